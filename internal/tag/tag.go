package tag

import "time"

type Tag struct {
	Text      string `gorm:"primaryKey;size:20" json:"text"`
	CreatedAt time.Time
}

func Texts(tags []Tag) []string {
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = t.Text
	}
	return out
}
