package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func permissionContext(t *testing.T, user *AppUser) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest("GET", "/api/facts", nil)
	rec := httptest.NewRecorder()
	return &AppContext{
		Context: e.NewContext(req, rec),
		App:     &App{},
		User:    user,
	}, rec
}

func TestRequirePermission(t *testing.T) {
	cases := []struct {
		name string
		user *AppUser
		want int
	}{
		{"no user", nil, http.StatusUnauthorized},
		{"missing permission", &AppUser{Role: "user", Permissions: []string{"alias.view"}}, http.StatusForbidden},
		{"explicit permission", &AppUser{Role: "user", Permissions: []string{"fact.query"}}, http.StatusOK},
		{"admin without explicit grant", &AppUser{Role: "admin"}, http.StatusOK},
	}

	handler := RequirePermission("fact.query")(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, rec := permissionContext(t, tc.user)
			if err := handler(c); err != nil {
				t.Fatalf("handler error = %v", err)
			}
			if rec.Code != tc.want {
				t.Fatalf("status = %d, want %d", rec.Code, tc.want)
			}
		})
	}
}

func TestHasPermission(t *testing.T) {
	if HasPermission(nil, "fact.query") {
		t.Fatal("nil user must not hold permissions")
	}
	user := &AppUser{Permissions: []string{"fact.query"}}
	if !HasPermission(user, "fact.query") {
		t.Fatal("granted permission not recognized")
	}
	if HasPermission(user, "alias.write") {
		t.Fatal("ungranted permission recognized")
	}
}

func TestIsAdmin(t *testing.T) {
	if IsAdmin(nil) {
		t.Fatal("nil user must not be admin")
	}
	if IsAdmin(&AppUser{Role: "user"}) {
		t.Fatal("regular user reported as admin")
	}
	if !IsAdmin(&AppUser{Role: "admin"}) {
		t.Fatal("admin role not recognized")
	}
}
