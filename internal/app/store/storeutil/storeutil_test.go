package storeutil

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestNewestFirst(t *testing.T) {
	tests := []struct {
		size, page         int64
		wantSkip, wantSize int64
	}{
		{25, 1, 0, 25},
		{25, 3, 50, 25},
		{0, 2, 20, 20},
		{10, 0, 0, 10},
		{10, -4, 0, 10},
	}
	for _, tt := range tests {
		o := NewestFirst(tt.size, tt.page)
		if *o.Skip != tt.wantSkip || *o.Limit != tt.wantSize {
			t.Errorf("NewestFirst(%d, %d) skip=%d limit=%d, want %d/%d", tt.size, tt.page, *o.Skip, *o.Limit, tt.wantSkip, tt.wantSize)
		}
		sort, ok := o.Sort.(bson.D)
		if !ok || len(sort) != 2 || sort[0].Key != "created_at" || sort[1].Key != "_id" {
			t.Errorf("sort = %v", o.Sort)
		}
	}
}

func TestContains_EscapesPattern(t *testing.T) {
	got := Contains("title_ci", "c++ (live)")["title_ci"].(bson.M)["$regex"]
	if got != `c\+\+ \(live\)` {
		t.Errorf("$regex = %q", got)
	}
}

func TestWithIDMatch(t *testing.T) {
	oid := primitive.NewObjectID()
	if got := WithIDMatch(bson.A{}, oid.Hex()); len(got) != 1 || got[0].(bson.M)["_id"] != oid {
		t.Errorf("hex id not matched: %v", got)
	}
	if got := WithIDMatch(bson.A{bson.M{}}, "dQw4w9WgXcQ"); len(got) != 1 {
		t.Errorf("non-id query added a clause: %v", got)
	}
}
