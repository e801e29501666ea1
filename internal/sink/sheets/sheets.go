// Package sheets appends registration records to a Google Sheets spreadsheet
// using a service account.
package sheets

import (
	"context"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"

	"github.com/daap14/flightclub/internal/registration"
)

const (
	// DefaultRange covers the eight record columns of the first sheet.
	DefaultRange = "Sheet1!A:H"

	valueInputOption = "USER_ENTERED"
)

// Config holds the service account credentials and target spreadsheet.
type Config struct {
	ClientEmail string
	PrivateKey  string
	SheetID     string
	Range       string
	Timeout     time.Duration
}

// Validate reports registration.ErrConfiguration when any credential is missing.
func (c Config) Validate() error {
	if c.ClientEmail == "" || c.PrivateKey == "" || c.SheetID == "" {
		return registration.ErrConfiguration
	}
	return nil
}

// UnescapePrivateKey turns literal "\n" sequences, as stored in single-line
// environment variables, into newlines.
func UnescapePrivateKey(key string) string {
	return strings.ReplaceAll(key, `\n`, "\n")
}

// Sink appends records through the Sheets v4 values API.
type Sink struct {
	values  *gsheets.SpreadsheetsValuesService
	sheetID string
	rng     string
	timeout time.Duration
}

// New creates a Sink authenticated with the service account in cfg.
func New(ctx context.Context, cfg Config) (*Sink, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	key := []byte(UnescapePrivateKey(cfg.PrivateKey))
	block, _ := pem.Decode(key)
	if block == nil {
		return nil, fmt.Errorf("%w: private key is not PEM encoded", registration.ErrConfiguration)
	}
	if err := parsePrivateKey(block.Bytes); err != nil {
		return nil, fmt.Errorf("%w: parsing private key: %v", registration.ErrConfiguration, err)
	}

	jwtCfg := &jwt.Config{
		Email:      cfg.ClientEmail,
		PrivateKey: key,
		Scopes:     []string{gsheets.SpreadsheetsScope},
		TokenURL:   google.JWTTokenURL,
	}

	return NewWithClient(ctx, cfg, jwtCfg.Client(ctx))
}

// parsePrivateKey accepts the PKCS8 and PKCS1 encodings the token source supports.
func parsePrivateKey(der []byte) error {
	if _, err := x509.ParsePKCS8PrivateKey(der); err == nil {
		return nil
	}
	_, err := x509.ParsePKCS1PrivateKey(der)
	return err
}

// NewWithClient creates a Sink that sends requests through httpClient.
// Extra options, such as option.WithEndpoint, are applied after it.
func NewWithClient(ctx context.Context, cfg Config, httpClient *http.Client, opts ...option.ClientOption) (*Sink, error) {
	opts = append([]option.ClientOption{option.WithHTTPClient(httpClient)}, opts...)
	svc, err := gsheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating sheets service: %w", err)
	}

	rng := cfg.Range
	if rng == "" {
		rng = DefaultRange
	}

	return &Sink{
		values:  svc.Spreadsheets.Values,
		sheetID: cfg.SheetID,
		rng:     rng,
		timeout: cfg.Timeout,
	}, nil
}

// Append writes rec as one row after the last row of the configured range.
func (s *Sink) Append(ctx context.Context, rec registration.Record) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	body := &gsheets.ValueRange{
		Values: [][]interface{}{rec.Row()},
	}

	_, err := s.values.Append(s.sheetID, s.rng, body).
		ValueInputOption(valueInputOption).
		Context(ctx).
		Do()
	if err != nil {
		return registration.NewSinkError(Classify(err), fmt.Errorf("appending row to sheet: %w", err))
	}

	return nil
}

// Classify maps a Sheets client error to a sink error kind.
func Classify(err error) registration.SinkErrorKind {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		return registration.SinkAuthFailure
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == http.StatusUnauthorized, apiErr.Code == http.StatusForbidden:
			return registration.SinkAuthFailure
		case apiErr.Code == http.StatusTooManyRequests, apiErr.Code >= http.StatusInternalServerError:
			return registration.SinkUnavailable
		}
		return registration.SinkUnknown
	}

	// *url.Error satisfies net.Error for any transport failure, including
	// token source errors, so only its cause is inspected.
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		err = urlErr.Err
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return registration.SinkUnavailable
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return registration.SinkUnavailable
	}

	return registration.SinkUnknown
}
