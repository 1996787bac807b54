package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/shifa-health/shifa/internal/platform/i18n"
)

func TestCodeOf(t *testing.T) {
	base := New(CodeNotFound, i18n.Message{Ar: "غير موجود", En: "not found"})
	wrapped := fmt.Errorf("loading entity: %w", base)

	if got := CodeOf(wrapped); got != CodeNotFound {
		t.Errorf("CodeOf(wrapped) = %q, want %q", got, CodeNotFound)
	}
	if got := CodeOf(errors.New("boom")); got != CodeTransaction {
		t.Errorf("CodeOf(plain) = %q, want %q", got, CodeTransaction)
	}
}

func TestMessageOfFallback(t *testing.T) {
	msg := MessageOf(errors.New("driver: bad connection"))
	if msg.Ar == "" || msg.En == "" {
		t.Errorf("fallback message must be bilingual, got %+v", msg)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(CodeTransaction, i18n.Message{Ar: "فشل الحفظ", En: "save failed"}, cause)

	if !errors.Is(err, cause) {
		t.Error("Wrap must keep the cause reachable via errors.Is")
	}
}

func TestHTTPStatus(t *testing.T) {
	cases := map[Code]int{
		CodeFormat:      http.StatusUnprocessableEntity,
		CodeLogic:       http.StatusUnprocessableEntity,
		CodeContainment: http.StatusUnprocessableEntity,
		CodeNotFound:    http.StatusNotFound,
		CodeBadRequest:  http.StatusBadRequest,
		CodeTransaction: http.StatusInternalServerError,
	}
	for code, want := range cases {
		if got := HTTPStatus(code); got != want {
			t.Errorf("HTTPStatus(%s) = %d, want %d", code, got, want)
		}
	}
}
