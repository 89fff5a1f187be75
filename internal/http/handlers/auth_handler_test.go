package handlers

import (
	"net/http"
	"testing"

	"github.com/tbourn/go-gallery-backend/internal/domain"
	"github.com/tbourn/go-gallery-backend/internal/services"
)

func TestRegister(t *testing.T) {
	f := newFixture(t)
	w := f.json(http.MethodPost, "/register", "", `{"username":"alice","email":"a@example.com","password":"pw"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d (%s)", w.Code, w.Body.String())
	}
	if got := decode[MessageResponse](t, w); got.Message != "User registered" {
		t.Fatalf("unexpected body: %+v", got)
	}
}

func TestRegister_Errors(t *testing.T) {
	cases := []struct {
		name   string
		body   string
		err    error
		status int
		code   string
	}{
		{"bad json", `{`, nil, http.StatusBadRequest, ErrCodeBadRequest},
		{"missing fields", `{"username":"a"}`, services.ErrMissingFields, http.StatusBadRequest, ErrCodeBadRequest},
		{"duplicate", `{"username":"a","email":"a@x.io","password":"p"}`, services.ErrUserExists, http.StatusBadRequest, ErrCodeUserExists},
		{"storage", `{"username":"a","email":"a@x.io","password":"p"}`, errBoom, http.StatusInternalServerError, ErrCodeCreateFailed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			f.auth.registerErr = tc.err
			w := f.json(http.MethodPost, "/register", "", tc.body)
			expectError(t, w, tc.status, tc.code)
		})
	}
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	f.auth.token = "tok-123"
	f.auth.user = &domain.User{ID: 4, Username: "alice", Email: "a@example.com", PasswordHash: "hash"}

	w := f.json(http.MethodPost, "/login", "", `{"usernameOrEmail":"alice","password":"pw"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	got := decode[LoginResponse](t, w)
	if got.Message != "Login succeeded" || got.Token != "tok-123" {
		t.Fatalf("unexpected body: %+v", got)
	}
	if got.User != (UserView{ID: 4, Username: "alice", Email: "a@example.com"}) {
		t.Fatalf("unexpected user: %+v", got.User)
	}
	if f.auth.gotLogin != "alice" {
		t.Fatalf("service got login %q", f.auth.gotLogin)
	}
}

func TestLogin_Errors(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"missing", services.ErrMissingFields, http.StatusBadRequest, ErrCodeBadRequest},
		{"bad credentials", services.ErrInvalidCredentials, http.StatusUnauthorized, ErrCodeUnauthorized},
		{"storage", errBoom, http.StatusInternalServerError, ErrCodeInternal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			f.auth.loginErr = tc.err
			w := f.json(http.MethodPost, "/login", "", `{"usernameOrEmail":"alice","password":"pw"}`)
			expectError(t, w, tc.status, tc.code)
		})
	}

	f := newFixture(t)
	expectError(t, f.json(http.MethodPost, "/login", "", `[]`), http.StatusBadRequest, ErrCodeBadRequest)
}
