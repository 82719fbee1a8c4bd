package distribution

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestSuccessResponse(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{1, "1 file(s) uploaded successfully!"},
		{2, "2 file(s) uploaded successfully!"},
		{10, "10 file(s) uploaded successfully!"},
	}

	for _, tt := range tests {
		got := SuccessResponse(tt.n)
		if !got.Success {
			t.Errorf("SuccessResponse(%d).Success = false", tt.n)
		}
		if got.Message != tt.want {
			t.Errorf("SuccessResponse(%d).Message = %q, want %q", tt.n, got.Message, tt.want)
		}
	}
}

func TestErrorResponse(t *testing.T) {
	got := ErrorResponse(errors.New("quota exceeded"))
	if got.Success {
		t.Error("expected Success to be false")
	}
	if got.Message != "Error: quota exceeded" {
		t.Errorf("unexpected message %q", got.Message)
	}
}

func TestNoFilesResponse_JSON(t *testing.T) {
	b, err := json.Marshal(NoFilesResponse())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"success":false,"message":"No files uploaded"}`
	if string(b) != want {
		t.Errorf("got %s, want %s", b, want)
	}
}
