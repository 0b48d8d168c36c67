package models

// LessonEntry is one learnable unit inside a lesson
type LessonEntry struct {
	ContentRef  string   `json:"content_ref"`
	ItemType    ItemType `json:"item_type"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Example     string   `json:"example,omitempty"`
	AudioRef    string   `json:"audio_ref,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// Lesson is the content payload used to batch-create review items when a
// student completes a lesson
type Lesson struct {
	ID       string        `json:"id"`
	CourseID string        `json:"course_id"`
	Title    string        `json:"title"`
	Entries  []LessonEntry `json:"entries"`
}
