package model

// StudyRow is one problem entry in a topic's study schedule.  Rows of the
// same topic are stored as an ordered list; the first row is shown on top.
//
// Fields:
//  ID      – stable identifier, kept across CSV export and import.
//  Title   – problem name.
//  Date    – solve date in Korean long form (e.g. "2025년 8월 23일").
//  Revisit – free-text revisit reminder.
//  Topic   – display label of the topic the row belongs to.
//  Level   – difficulty bucket (L1, L2, L3).
//  Reviews – review milestone tags such as "1일" or "1주일".
//  Link    – problem URL, "#" when unknown.
type StudyRow struct {
    ID      string   `json:"id"`      // study_rows.id
    Title   string   `json:"title"`   // study_rows.title
    Date    string   `json:"date"`    // study_rows.solved_on
    Revisit string   `json:"revisit"` // study_rows.revisit
    Topic   string   `json:"topic"`   // study_rows.topic
    Level   string   `json:"level"`   // study_rows.level
    Reviews []string `json:"reviews"` // study_rows.reviews, space separated
    Link    string   `json:"link"`    // study_rows.link
}
