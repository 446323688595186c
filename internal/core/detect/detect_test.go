package detect

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fridge-inventory/internal/pkg/common"
)

func TestFilterDetections(t *testing.T) {
	dets := []Detection{
		{ClassLabel: "milk", Confidence: 0.9},
		{ClassLabel: "egg", Confidence: 0.5},
		{ClassLabel: "bottle", Confidence: 0.49},
	}
	got := FilterDetections(dets, 0.5)
	if len(got) != 2 || got[0].ClassLabel != "milk" || got[1].ClassLabel != "egg" {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestFilterLines(t *testing.T) {
	lines := []TextLine{
		{Text: "レタス", Confidence: 0.95},
		{Text: "合計", Confidence: 0.6},
		{Text: "", Confidence: 0.99},
		{Text: "トマト", Confidence: 0.7},
	}
	got := FilterLines(lines, 0.7)
	if len(got) != 2 || got[0] != "レタス" || got[1] != "トマト" {
		t.Fatalf("unexpected result: %v", got)
	}
}

func TestUnavailable(t *testing.T) {
	u := Unavailable{Reason: "not configured"}
	if _, err := u.Detect(context.Background(), nil); !errors.Is(err, common.ErrDetectorUnavailable) {
		t.Fatalf("expected ErrDetectorUnavailable, got %v", err)
	}
	if _, err := u.Recognize(context.Background(), nil); !errors.Is(err, common.ErrDetectorUnavailable) {
		t.Fatalf("expected ErrDetectorUnavailable, got %v", err)
	}
}

func TestHTTPDetector(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/detect" || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		f, _, err := r.FormFile("image")
		if err != nil {
			http.Error(w, "missing image", http.StatusBadRequest)
			return
		}
		body, _ := io.ReadAll(f)
		if string(body) != "jpeg-bytes" {
			http.Error(w, "bad image", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"detections":[
			{"class_label":"milk","confidence":0.92,"bbox":[0.1,0.2,0.3,0.4]},
			{"class_label":"","confidence":0.99},
			{"class_label":"eggs","confidence":0.61}
		]}`)
	}))
	defer srv.Close()

	d := NewHTTPDetector(srv.URL, 2*time.Second)
	got, err := d.Detect(context.Background(), []byte("jpeg-bytes"))
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 detections, got %+v", got)
	}
	if got[0].ClassLabel != "milk" || got[0].BBox.XMax != 0.3 {
		t.Errorf("unexpected first detection: %+v", got[0])
	}
	if got[1].ClassLabel != "eggs" || got[1].BBox != (BoundingBox{}) {
		t.Errorf("unexpected second detection: %+v", got[1])
	}
}

func TestHTTPDetectorFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	d := NewHTTPDetector(srv.URL, 2*time.Second)
	if _, err := d.Detect(context.Background(), []byte("x")); !errors.Is(err, common.ErrDetectorUnavailable) {
		t.Fatalf("expected ErrDetectorUnavailable, got %v", err)
	}
}
