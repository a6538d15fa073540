package export

import (
	"path"
	"time"

	"github.com/gorewood/chatmd/internal/chatlog"
)

// Item describes one conversation for listings.
type Item struct {
	Index    int    `json:"index"`
	Title    string `json:"title"`
	FileName string `json:"file_name"`
	Bucket   string `json:"bucket"`
	Messages int    `json:"messages"`
	Empty    bool   `json:"empty"`
	Error    string `json:"error,omitempty"`
}

// List summarizes every conversation in doc in document order. Buckets are
// computed in loc, or time.Local when nil.
func List(doc *chatlog.Document, loc *time.Location) []Item {
	if doc == nil {
		return []Item{}
	}

	items := make([]Item, 0, len(doc.Conversations))
	for i, conv := range doc.Conversations {
		msgs := conv.Messages()
		year, month := Bucket(msgs, loc)
		var decodeErr string
		if conv.Err != nil {
			decodeErr = conv.Err.Error()
		}
		items = append(items, Item{
			Index:    i,
			Title:    conv.DisplayTitle(i),
			FileName: conv.FileName(i) + ".md",
			Bucket:   path.Join(year, month),
			Messages: len(msgs),
			Empty:    len(msgs) == 0,
			Error:    decodeErr,
		})
	}
	return items
}
