// Package viewdata builds the layout fields every console page shares.
package viewdata

import (
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/dalemusser/stratareview/internal/app/system/auth"
	"github.com/dalemusser/stratareview/internal/app/system/authz"
	"github.com/dalemusser/waffle/pantry/httpnav"
	"github.com/gorilla/csrf"
)

// DefaultSiteName is shown when no site name is configured.
const DefaultSiteName = "StrataReview Admin"

// NavItem is one entry in the console navigation bar.
type NavItem struct {
	Label  string
	Href   string
	Active bool
}

// BaseVM is embedded in every page view model and read by layout.gohtml.
type BaseVM struct {
	SiteName  string
	Title     string
	BackURL   string
	Path      string
	Nav       []NavItem
	CSRFToken string

	SignedIn  bool
	IsAdmin   bool
	UserID    string
	UserName  string
	UserEmail string
}

var siteName atomic.Value

func init() { siteName.Store(DefaultSiteName) }

// Init sets the site name. A blank name restores DefaultSiteName.
func Init(name string) {
	if name = strings.TrimSpace(name); name == "" {
		name = DefaultSiteName
	}
	siteName.Store(name)
}

func SiteName() string { return siteName.Load().(string) }

var navItems = []NavItem{
	{Label: "Dashboard", Href: "/dashboard"},
	{Label: "Users", Href: "/users"},
	{Label: "Videos", Href: "/videos"},
	{Label: "Audit log", Href: "/audit"},
}

// NewBaseVM fills the shared fields for r. back is used when the request
// carries no return link.
func NewBaseVM(r *http.Request, title, back string) BaseVM {
	vm := BaseVM{
		SiteName:  SiteName(),
		Title:     title,
		BackURL:   httpnav.ResolveBackURL(r, back),
		Path:      httpnav.CurrentPath(r),
		CSRFToken: csrf.Token(r),
	}
	if name, id, admin, ok := authz.UserCtx(r); ok {
		u, _ := auth.CurrentUser(r)
		vm.SignedIn, vm.IsAdmin = true, admin
		vm.UserID, vm.UserName, vm.UserEmail = id.Hex(), name, u.Email
	}
	if vm.IsAdmin {
		vm.Nav = nav(r.URL.Path)
	}
	return vm
}

func nav(path string) []NavItem {
	out := make([]NavItem, len(navItems))
	for i, item := range navItems {
		item.Active = path == item.Href || strings.HasPrefix(path, item.Href+"/")
		out[i] = item
	}
	return out
}
