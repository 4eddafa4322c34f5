// Package forms validates and submits the site's forms to the ERP backend.
package forms

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/puzzo-dev/sitefront/internal/content"
	"github.com/puzzo-dev/sitefront/internal/observability"
)

const defaultTimeout = 8 * time.Second

// Kind classifies a submission failure.
type Kind string

const (
	KindValidation  Kind = "validation"
	KindRejected    Kind = "rejected"
	KindUnavailable Kind = "unavailable"
)

// Error is returned by Submit for every failure.
type Error struct {
	Kind    Kind
	DocType string
	// Fields maps the JSON name of each invalid field to the failed rule.
	Fields map[string]string
	// Status is the ERP response status, zero when no response was received.
	Status int
	Err    error
}

func (e *Error) Error() string {
	switch {
	case e.Kind == KindValidation:
		names := make([]string, 0, len(e.Fields))
		for name := range e.Fields {
			names = append(names, name)
		}
		sort.Strings(names)
		return fmt.Sprintf("forms: invalid %s: %s", e.DocType, strings.Join(names, ", "))
	case e.Err != nil:
		return fmt.Sprintf("forms: %s %s: %v", e.Kind, e.DocType, e.Err)
	default:
		return fmt.Sprintf("forms: %s %s", e.Kind, e.DocType)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// IsKind reports whether err is a forms *Error of kind k.
func IsKind(err error, k Kind) bool {
	var fe *Error
	return errors.As(err, &fe) && fe.Kind == k
}

// Receipt acknowledges a stored submission.
type Receipt struct {
	ID      string `json:"id"`
	DocType string `json:"docType"`
	// Fake is set when no ERP backend is configured and nothing was stored.
	Fake bool `json:"fake,omitempty"`
}

// Options configures a Submitter.
type Options struct {
	// Credentials are used when Lookup yields nothing.
	Credentials *content.ERPCredentials
	// Lookup resolves credentials per submission, typically from the CMS site config.
	Lookup     func(ctx context.Context) *content.ERPCredentials
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Submitter validates, sanitises and forwards form payloads.
type Submitter struct {
	static   *content.ERPCredentials
	lookup   func(ctx context.Context) *content.ERPCredentials
	http     *http.Client
	validate *validator.Validate
	policy   *bluemonday.Policy
	logger   *zap.Logger
}

func NewSubmitter(opts Options) *Submitter {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return &Submitter{
		static:   opts.Credentials,
		lookup:   opts.Lookup,
		http:     httpClient,
		validate: v,
		policy:   bluemonday.StrictPolicy(),
		logger:   observability.OrNop(opts.Logger),
	}
}

// Submit sanitises and validates p, then stores it as an ERP document. Without ERP credentials a
// fake receipt is returned.
func (s *Submitter) Submit(ctx context.Context, p Payload) (Receipt, error) {
	docType := p.DocType()
	ctx, span := observability.Tracer().Start(ctx, "forms.submit")
	span.SetAttributes(attribute.String("forms.doctype", docType))
	defer span.End()

	p.sanitize(s.policy)
	if err := s.check(p, docType); err != nil {
		span.SetStatus(codes.Error, "validation")
		return Receipt{}, err
	}

	creds := s.credentials(ctx)
	if creds == nil {
		s.logger.Info("forms: no erp configured, returning fake receipt", zap.String("doctype", docType))
		return Receipt{ID: randomID("fake"), DocType: docType, Fake: true}, nil
	}

	receipt, err := s.post(ctx, creds, docType, p.fields())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(kindOf(err)))
		s.logger.Warn("forms: submission failed", zap.String("doctype", docType), zap.Error(err))
		return Receipt{}, err
	}
	return receipt, nil
}

func (s *Submitter) check(p Payload, docType string) error {
	err := s.validate.Struct(p)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &Error{Kind: KindValidation, DocType: docType, Err: err}
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fe.Tag()
	}
	return &Error{Kind: KindValidation, DocType: docType, Fields: fields, Err: err}
}

func (s *Submitter) credentials(ctx context.Context) *content.ERPCredentials {
	if s.lookup != nil {
		if c := s.lookup(ctx); usable(c) {
			return c
		}
	}
	if usable(s.static) {
		return s.static
	}
	return nil
}

func usable(c *content.ERPCredentials) bool {
	return c != nil && strings.TrimSpace(c.BaseURL) != "" && c.APIKey != "" && c.APISecret != ""
}

func (s *Submitter) post(ctx context.Context, creds *content.ERPCredentials, docType string, fields map[string]any) (Receipt, error) {
	endpoint, err := url.JoinPath(strings.TrimRight(strings.TrimSpace(creds.BaseURL), "/"), "api", "resource", docType)
	if err != nil {
		return Receipt{}, &Error{Kind: KindUnavailable, DocType: docType, Err: err}
	}
	for k, v := range fields {
		if str, ok := v.(string); ok && str == "" {
			delete(fields, k)
		}
	}
	fields["doctype"] = docType
	body, err := json.Marshal(fields)
	if err != nil {
		return Receipt{}, &Error{Kind: KindUnavailable, DocType: docType, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return Receipt{}, &Error{Kind: KindUnavailable, DocType: docType, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "token "+creds.APIKey+":"+creds.APISecret)

	resp, err := s.http.Do(req)
	if err != nil {
		return Receipt{}, &Error{Kind: KindUnavailable, DocType: docType, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		kind := KindRejected
		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			kind = KindUnavailable
		}
		return Receipt{}, &Error{
			Kind:    kind,
			DocType: docType,
			Status:  resp.StatusCode,
			Err:     fmt.Errorf("status %d: %s", resp.StatusCode, drain(resp.Body)),
		}
	}

	var payload struct {
		Data struct {
			Name string `json:"name"`
		} `json:"data"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&payload); err != nil {
		return Receipt{}, &Error{Kind: KindUnavailable, DocType: docType, Status: resp.StatusCode, Err: err}
	}
	return Receipt{ID: payload.Data.Name, DocType: docType}, nil
}

func kindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindUnavailable
}

func drain(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, 512))
	return strings.TrimSpace(string(b))
}

var idGen = func() string { return ulid.Make().String() }

func randomID(prefix string) string {
	return prefix + "_" + idGen()
}
