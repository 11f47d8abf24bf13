// internal/app/features/auditlog/types.go
package auditlog

import (
	"sort"

	"github.com/dalemusser/stratareview/internal/app/store/audit"
	"github.com/dalemusser/stratareview/internal/app/system/viewdata"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type option struct {
	Value    string
	Label    string
	Selected bool
}

func selectOptions(opts []option, selected string) []option {
	out := make([]option, 0, len(opts))
	for _, o := range opts {
		o.Selected = o.Value == selected
		out = append(out, o)
	}
	return out
}

// listFilter echoes the accepted filter back to the form.
type listFilter struct {
	Category  string
	EventType string
	StartDate string
	EndDate   string
	Page      int
}

type detail struct {
	Key   string
	Value string
}

type row struct {
	When      string
	Category  string
	Event     string
	Actor     string
	ActorID   string
	Subject   string
	SubjectID string
	IP        string
	Success   bool
	Reason    string
	Details   []detail
}

// ListVM is the view model for the audit log page.
type ListVM struct {
	viewdata.BaseVM
	Filter     listFilter
	Categories []option
	EventTypes []option
	Rows       []row
	Pager      viewdata.Pager
}

func toRow(e audit.Event, emails map[primitive.ObjectID]string) row {
	r := row{
		When:     e.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
		Category: e.Category,
		Event:    audit.Label(e.EventType),
		IP:       e.IP,
		Success:  e.Success,
		Reason:   e.FailureReason,
	}
	if e.ActorID != nil {
		r.ActorID = e.ActorID.Hex()
		r.Actor = nameOr(emails, *e.ActorID)
	}
	if e.UserID != nil {
		r.SubjectID = e.UserID.Hex()
		r.Subject = nameOr(emails, *e.UserID)
	}
	// Sign-in events have no separate actor.
	if r.Actor == "" && e.Category == audit.CategoryAuth {
		r.Actor, r.ActorID = r.Subject, r.SubjectID
		if r.Actor == "" {
			r.Actor = e.Details["email"]
		}
	}

	keys := make([]string, 0, len(e.Details))
	for k := range e.Details {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		r.Details = append(r.Details, detail{Key: k, Value: e.Details[k]})
	}
	return r
}

func nameOr(emails map[primitive.ObjectID]string, id primitive.ObjectID) string {
	if email, ok := emails[id]; ok {
		return email
	}
	return id.Hex()
}
