package chatlog

import (
	"fmt"
	"testing"
)

func msgNode(id, role string, ts *float64, text string) Node {
	msg := &Message{
		ID:      id,
		Author:  Author{Role: role},
		Content: Content{Parts: []Part{{Kind: PartText, Text: text}}},
	}
	if ts != nil {
		msg.CreateTime = At(*ts)
	}
	return Node{ID: id, Message: msg}
}

func f(v float64) *float64 { return &v }

func TestLinearize_SortsByTimestamp(t *testing.T) {
	mapping := map[string]Node{
		"c": msgNode("c", "assistant", f(300), "third"),
		"a": msgNode("a", "user", f(100), "first"),
		"b": msgNode("b", "user", f(200), "second"),
	}

	got := Linearize(mapping)
	want := []string{"first", "second", "third"}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i, w := range want {
		if got[i].Content.Parts[0].Text != w {
			t.Errorf("got[%d] = %q, want %q", i, got[i].Content.Parts[0].Text, w)
		}
	}
}

func TestLinearize_AbsentTimestampsFirst(t *testing.T) {
	mapping := map[string]Node{
		"late":  msgNode("late", "user", f(50), "timed"),
		"sys":   msgNode("sys", "system", nil, "untimed"),
		"epoch": msgNode("epoch", "user", f(0), "epoch"),
	}

	got := Linearize(mapping)
	order := []string{got[0].ID, got[1].ID, got[2].ID}
	if order[0] != "sys" || order[1] != "epoch" || order[2] != "late" {
		t.Errorf("order = %v, want [sys epoch late]", order)
	}
}

func TestLinearize_DropsNodesWithoutMessage(t *testing.T) {
	mapping := map[string]Node{
		"root": {ID: "root", Children: []string{"m"}},
		"m":    msgNode("m", "user", f(1), "only"),
	}

	got := Linearize(mapping)
	if len(got) != 1 || got[0].ID != "m" {
		t.Errorf("got %+v, want only m", got)
	}
}

func TestLinearize_EmptyWhenNoMessages(t *testing.T) {
	mapping := map[string]Node{
		"a": {ID: "a"},
		"b": {ID: "b", Parent: "a"},
	}
	if got := Linearize(mapping); len(got) != 0 {
		t.Errorf("len = %d, want 0", len(got))
	}
	if got := Linearize(nil); len(got) != 0 {
		t.Errorf("Linearize(nil) len = %d, want 0", len(got))
	}
}

func TestLinearize_TiesKeepNodeIDOrder(t *testing.T) {
	mapping := map[string]Node{}
	for i := range 20 {
		id := fmt.Sprintf("n%02d", i)
		mapping[id] = msgNode(id, "user", f(10), id)
	}

	for range 5 {
		got := Linearize(mapping)
		for i, m := range got {
			if want := fmt.Sprintf("n%02d", i); m.ID != want {
				t.Fatalf("got[%d] = %s, want %s", i, m.ID, want)
			}
		}
	}
}

func TestLinearize_NonDecreasing(t *testing.T) {
	stamps := []*float64{f(9), nil, f(3), f(3), nil, f(1e9), f(0.5), f(7)}
	mapping := map[string]Node{}
	for i, ts := range stamps {
		id := fmt.Sprintf("m%d", i)
		mapping[id] = msgNode(id, "user", ts, id)
	}

	got := Linearize(mapping)
	seenValid := false
	for i := 1; i < len(got); i++ {
		prev, cur := got[i-1].CreateTime, got[i].CreateTime
		if cur.Before(prev) {
			t.Errorf("got[%d] (%+v) sorts before got[%d] (%+v)", i, cur, i-1, prev)
		}
		if prev.Valid {
			seenValid = true
		}
		if seenValid && !cur.Valid {
			t.Errorf("absent timestamp at %d after a timestamped message", i)
		}
	}
}

func TestConversation_Names(t *testing.T) {
	tests := []struct {
		title       string
		wantDisplay string
		wantFile    string
	}{
		{title: "Trip planning", wantDisplay: "Trip planning", wantFile: "Trip_planning"},
		{title: "", wantDisplay: "chat_3", wantFile: "chat_3"},
		{title: "   ", wantDisplay: "chat_3", wantFile: "chat_3"},
		{title: "?!", wantDisplay: "?!", wantFile: "__"},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			c := Conversation{Title: tt.title}
			if got := c.DisplayTitle(3); got != tt.wantDisplay {
				t.Errorf("DisplayTitle() = %q, want %q", got, tt.wantDisplay)
			}
			if got := c.FileName(3); got != tt.wantFile {
				t.Errorf("FileName() = %q, want %q", got, tt.wantFile)
			}
		})
	}
}
