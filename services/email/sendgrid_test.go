package emailsvc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/mail"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/myschool/myschool/core"
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

type sentMail struct {
	From struct {
		Email string `json:"email"`
	} `json:"from"`
	Personalizations []struct {
		Subject string `json:"subject"`
		To      []struct {
			Email string `json:"email"`
		} `json:"to"`
	} `json:"personalizations"`
	Content []struct {
		Type  string `json:"type"`
		Value string `json:"value"`
	} `json:"content"`
}

func TestSendgridService_send(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr bool
	}{
		{name: "accepted", status: http.StatusAccepted},
		{name: "rejected", status: http.StatusUnauthorized, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got sentMail
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, sendgridEndpoint, r.URL.Path)
				assert.Equal(t, "Bearer sg-key", r.Header.Get("Authorization"))
				require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			conf := &core.Config{AppName: "MySchool", SendgridAPIKey: "sg-key", FromEmail: "noreply@school.test"}
			svc := newSendgridService(conf, srv.URL, &http.Client{Timeout: time.Second}, nopLogger{})

			err := svc.send(context.Background(), core.EmailMessage{
				To:          []mail.Address{{Name: "Admin", Address: "admin@school.test"}},
				Subject:     "Password reset",
				TextContent: "hello",
			})
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}

			assert.Equal(t, "noreply@school.test", got.From.Email)
			require.Len(t, got.Personalizations, 1)
			assert.Equal(t, "[MySchool] Password reset", got.Personalizations[0].Subject)
			require.Len(t, got.Personalizations[0].To, 1)
			assert.Equal(t, "admin@school.test", got.Personalizations[0].To[0].Email)
			require.Len(t, got.Content, 1)
			assert.Equal(t, "text/plain", got.Content[0].Type)
		})
	}
}
