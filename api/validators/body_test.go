package validators

import (
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/medkitstore/medkit-backend/pkg/errors"
)

type samplePayload struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

func decode(t *testing.T, body string) (samplePayload, error) {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/", strings.NewReader(body))
	var dst samplePayload
	err := DecodeJSONBody(rec, req, &dst)
	return dst, err
}

func TestDecodeJSONBody(t *testing.T) {
	t.Parallel()

	payload, err := decode(t, `{"email":"jo@example.com","password":"hunter2hunter2"}`)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Email != "jo@example.com" {
		t.Fatalf("unexpected payload %+v", payload)
	}
}

func TestDecodeJSONBodyRejections(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		body string
	}{
		{"empty body", ``},
		{"malformed", `{"email":`},
		{"unknown field", `{"email":"jo@example.com","password":"hunter2hunter2","extra":1}`},
		{"trailing object", `{"email":"jo@example.com","password":"hunter2hunter2"}{}`},
		{"wrong type", `{"email":"jo@example.com","password":42}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := decode(t, tc.body)
			if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected VALIDATION_ERROR, got %v", err)
			}
		})
	}
}

func TestDecodeJSONBodyFieldDetails(t *testing.T) {
	t.Parallel()

	_, err := decode(t, `{"email":"not-an-email","password":"short"}`)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}

	details, ok := typed.Details().(map[string]string)
	if !ok {
		t.Fatalf("expected field details, got %T", typed.Details())
	}
	if details["email"] != "must be a valid email address" {
		t.Fatalf("unexpected email detail %q", details["email"])
	}
	if details["password"] != "must be at least 8 characters" {
		t.Fatalf("unexpected password detail %q", details["password"])
	}
}
