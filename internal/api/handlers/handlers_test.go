package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"fridge-inventory/internal/pkg/common"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
	RegisterValidation()
}

type sampleRequest struct {
	Name   string `json:"name" binding:"required"`
	Status string `json:"status" binding:"omitempty,oneof=consumed discarded"`
}

func TestBindJSONValidation(t *testing.T) {
	cases := []struct {
		body    string
		wantErr string
	}{
		{`{"name":"牛乳"}`, ""},
		{`{}`, "name: required"},
		{`{"name":"x","status":"eaten"}`, "status: oneof=consumed discarded"},
		{`{"name":`, "INVALID_REQUEST"},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.body))
		c.Request.Header.Set("Content-Type", "application/json")

		var req sampleRequest
		err := BindJSON(c, &req)
		if tc.wantErr == "" {
			if err != nil {
				t.Errorf("BindJSON(%s) = %v", tc.body, err)
			}
			continue
		}
		if !errors.Is(err, common.ErrInvalidRequest) {
			t.Errorf("BindJSON(%s) = %v, want ErrInvalidRequest", tc.body, err)
			continue
		}
		ce := common.AsCustomError(err)
		if !strings.Contains(ce.Message, tc.wantErr) && ce.Code != tc.wantErr {
			t.Errorf("BindJSON(%s) message = %q, want containing %q", tc.body, ce.Message, tc.wantErr)
		}
	}
}

func TestRespondError(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{common.ErrRecordNotFound, http.StatusNotFound, common.ErrCodeRecordNotFound},
		{common.ErrDetectorUnavailable.Wrap(errors.New("dial")), http.StatusServiceUnavailable, common.ErrCodeDetectorUnavailable},
		{fmt.Errorf("wrapped: %w", common.ErrConflict), http.StatusConflict, common.ErrCodeConflict},
		{errors.New("boom"), http.StatusInternalServerError, common.ErrCodeInternalError},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

		RespondError(c, tc.err)
		if w.Code != tc.status {
			t.Errorf("%v: status = %d, want %d", tc.err, w.Code, tc.status)
		}
		var body common.ErrorResponse
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body.Code != tc.code {
			t.Errorf("%v: code = %s, want %s", tc.err, body.Code, tc.code)
		}
	}
}

func TestRespondErrorCarriesRaw(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)

	RespondError(c, common.ErrUnparsableModelOutput.WithRaw("not json"))
	if w.Code != http.StatusBadGateway {
		t.Fatalf("status = %d", w.Code)
	}
	var body common.ErrorResponse
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if body.Raw != "not json" {
		t.Fatalf("raw = %q", body.Raw)
	}
}
