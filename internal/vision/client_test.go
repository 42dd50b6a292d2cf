package vision

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mmeshcher/receipt-loyalty-system/internal/model"
)

type stubGenerator struct {
	response string
	err      error
}

func (s *stubGenerator) Generate(ctx context.Context, prompt string, image []byte, mimeType string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func TestExtract_Success(t *testing.T) {
	gen := &stubGenerator{
		response: `{"orderNumber": "042", "orderTotal": 23.45, "orderDate": "06/15", "orderTime": "12:30"}`,
	}
	c := NewClient(gen, time.Second)

	got, err := c.Extract(context.Background(), []byte("img"), "image/jpeg")
	if err != nil {
		t.Fatalf("Extract error: %v", err)
	}

	want := model.ReceiptFields{OrderNumber: "042", OrderTotal: 23.45, OrderDate: "06/15", OrderTime: "12:30"}
	if *got != want {
		t.Fatalf("fields = %+v, want %+v", *got, want)
	}
}

func TestExtract_TimeoutMapped(t *testing.T) {
	gen := &stubGenerator{err: context.DeadlineExceeded}
	c := NewClient(gen, time.Second)

	_, err := c.Extract(context.Background(), []byte("img"), "image/jpeg")
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("error = %v, want ErrTimeout", err)
	}
}

func TestExtract_ServiceError(t *testing.T) {
	gen := &stubGenerator{err: errors.New("502 bad gateway")}
	c := NewClient(gen, time.Second)

	_, err := c.Extract(context.Background(), []byte("img"), "image/jpeg")
	if !errors.Is(err, ErrServiceError) {
		t.Fatalf("error = %v, want ErrServiceError", err)
	}
}

func TestParseResponse(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    *model.ReceiptFields
		wantErr error
	}{
		{
			name: "plain json",
			raw:  `{"orderNumber": "17", "orderTotal": 9.5, "orderDate": "01/02", "orderTime": "08:05"}`,
			want: &model.ReceiptFields{OrderNumber: "17", OrderTotal: 9.5, OrderDate: "01/02", OrderTime: "08:05"},
		},
		{
			name: "json inside markdown fences",
			raw:  "```json\n{\"orderNumber\": \"17\", \"orderTotal\": 9.5, \"orderDate\": \"01/02\", \"orderTime\": \"08:05\"}\n```",
			want: &model.ReceiptFields{OrderNumber: "17", OrderTotal: 9.5, OrderDate: "01/02", OrderTime: "08:05"},
		},
		{
			name: "json wrapped in prose",
			raw:  `Here is what I found on the receipt: {"orderNumber": "17", "orderTotal": 9.5, "orderDate": "01/02", "orderTime": "08:05"} Let me know if you need more.`,
			want: &model.ReceiptFields{OrderNumber: "17", OrderTotal: 9.5, OrderDate: "01/02", OrderTime: "08:05"},
		},
		{
			name:    "vendor rejection",
			raw:     `{"error": "not_this_vendor"}`,
			wantErr: ErrNotThisVendor,
		},
		{
			name:    "obstructed rejection",
			raw:     `{"error": "obstructed"}`,
			wantErr: ErrObstructed,
		},
		{
			name:    "illegible rejection",
			raw:     `{"error": "illegible"}`,
			wantErr: ErrIllegible,
		},
		{
			name:    "no order number rejection",
			raw:     `{"error": "no_valid_order_number"}`,
			wantErr: ErrNoValidOrderNumber,
		},
		{
			name:    "unknown error code",
			raw:     `{"error": "out_of_cheese"}`,
			wantErr: ErrMalformed,
		},
		{
			name:    "no json at all",
			raw:     `I could not process this image.`,
			wantErr: ErrMalformed,
		},
		{
			name:    "broken json",
			raw:     `{"orderNumber": "17",`,
			wantErr: ErrMalformed,
		},
		{
			name:    "null field means no partial success",
			raw:     `{"orderNumber": "17", "orderTotal": null, "orderDate": "01/02", "orderTime": "08:05"}`,
			wantErr: ErrIllegible,
		},
		{
			name:    "missing field means no partial success",
			raw:     `{"orderNumber": "17", "orderDate": "01/02", "orderTime": "08:05"}`,
			wantErr: ErrIllegible,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseResponse(tt.raw)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}

			if err != nil {
				t.Fatalf("parseResponse error: %v", err)
			}
			if *got != *tt.want {
				t.Fatalf("fields = %+v, want %+v", *got, *tt.want)
			}
		})
	}
}
