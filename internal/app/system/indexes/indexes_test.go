package indexes

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

func TestAsc(t *testing.T) {
	got := asc("user_id", "-completed_at")
	want := bson.D{{Key: "user_id", Value: 1}, {Key: "completed_at", Value: -1}}
	if signature(got) != signature(want) {
		t.Errorf("asc() = %v, want %v", got, want)
	}
}

func TestModel(t *testing.T) {
	m := index{name: "idx_ratelimit_ttl", keys: asc("last_attempt"), ttl: 24 * time.Hour}.model()
	if *m.Options.Name != "idx_ratelimit_ttl" {
		t.Errorf("name = %q", *m.Options.Name)
	}
	if *m.Options.ExpireAfterSeconds != 86400 {
		t.Errorf("ttl = %d", *m.Options.ExpireAfterSeconds)
	}
	if m.Options.Unique != nil {
		t.Error("non-unique index should leave Unique unset")
	}
}

func TestCatalog_NamesUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, c := range catalog {
		sigs := map[string]bool{}
		for _, ix := range c.indexes {
			if seen[ix.name] {
				t.Errorf("index name %q used twice", ix.name)
			}
			seen[ix.name] = true
			if sig := signature(ix.keys); sigs[sig] {
				t.Errorf("%s: two indexes on %s", c.coll, sig)
			} else {
				sigs[sig] = true
			}
		}
	}
}
