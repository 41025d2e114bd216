package dto

import (
	"testing"

	apperrors "github.com/spec-kit/evently/pkg/util"
)

func TestValidateEventRequest(t *testing.T) {
	cases := []struct {
		name   string
		req    EventRequest
		fields []string
	}{
		{
			name: "valid",
			req: EventRequest{
				Title: "Go meetup", Description: "talks", DateTime: "2026-12-01T19:00:00Z",
				Location: "Lisbon", MaxCapacity: 30,
			},
		},
		{
			name:   "empty",
			req:    EventRequest{},
			fields: []string{"title", "description", "dateTime", "location", "maxCapacity"},
		},
		{
			name: "bad values",
			req: EventRequest{
				Title: "Go", Description: "talks", DateTime: "tomorrow",
				Location: "Lisbon", MaxCapacity: 1, Status: "ARCHIVED",
			},
			fields: []string{"title", "dateTime", "status"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.req)
			if len(tc.fields) == 0 {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			derr := apperrors.ToDomainError(err)
			if derr == nil || derr.Code != apperrors.CodeValidationFailed {
				t.Fatalf("err = %v, want validation error", err)
			}
			if len(derr.Details) != len(tc.fields) {
				t.Errorf("details = %v, want fields %v", derr.Details, tc.fields)
			}
			for _, f := range tc.fields {
				if _, ok := derr.Details[f]; !ok {
					t.Errorf("missing detail for %q in %v", f, derr.Details)
				}
			}
		})
	}
}

func TestValidateReservationStatus(t *testing.T) {
	if err := Validate(ReservationStatusRequest{Status: "CONFIRMED"}); err != nil {
		t.Fatalf("CONFIRMED rejected: %v", err)
	}
	err := Validate(ReservationStatusRequest{Status: "PENDING"})
	if apperrors.CodeOf(err) != apperrors.CodeValidationFailed {
		t.Fatalf("PENDING accepted: %v", err)
	}
	if msg := apperrors.ToDomainError(err).Details["status"]; msg != "must be one of CONFIRMED, REFUSED, CANCELED" {
		t.Errorf("message = %v", msg)
	}
}

func TestParsedDateTime(t *testing.T) {
	req := EventRequest{DateTime: "2026-12-01T19:00:00+01:00"}
	got, err := req.ParsedDateTime()
	if err != nil {
		t.Fatal(err)
	}
	if got.UTC().Hour() != 18 {
		t.Errorf("hour = %d", got.UTC().Hour())
	}
}
