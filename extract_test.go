package lettergen

import (
	"errors"
	"testing"
)

func TestExtract(t *testing.T) {
	t.Parallel()

	row := ownerRow("Jane Doe", "123 Main St", "Springfield", "CA", "94016")

	rec, err := Extract(0, row, DefaultColumns())
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if rec.OwnerName != "Jane Doe" {
		t.Errorf("OwnerName = %q, want %q", rec.OwnerName, "Jane Doe")
	}
	if got, want := rec.FullAddress(), "123 Main St, Springfield, CA 94016"; got != want {
		t.Errorf("FullAddress() = %q, want %q", got, want)
	}
	if got, want := EntryName(rec), "Jane_Doe_94016.pdf"; got != want {
		t.Errorf("EntryName() = %q, want %q", got, want)
	}
}

func TestExtract_TrimsValues(t *testing.T) {
	t.Parallel()

	row := ownerRow("  Jane Doe ", " 1 Elm ", "Town", " NV", "89501 ")
	rec, err := Extract(0, row, DefaultColumns())
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	want := OwnerRecord{OwnerName: "Jane Doe", Street: "1 Elm", City: "Town", State: "NV", PostalCode: "89501"}
	if rec != want {
		t.Errorf("Extract() = %+v, want %+v", rec, want)
	}
}

func TestExtract_ShortRow(t *testing.T) {
	t.Parallel()

	row := make(InputRow, 10)
	row[7] = "Jane Doe"

	_, err := Extract(4, row, DefaultColumns())
	if err == nil {
		t.Fatal("Extract() expected error for a 10-column row")
	}

	var extErr *ExtractionError
	if !errors.As(err, &extErr) {
		t.Fatalf("error type = %T, want *ExtractionError", err)
	}
	if extErr.Row != 4 {
		t.Errorf("Row = %d, want 4", extErr.Row)
	}
	if extErr.Field != FieldStreet {
		t.Errorf("Field = %v, want %v", extErr.Field, FieldStreet)
	}
	if !errors.Is(err, ErrMissingColumn) {
		t.Error("error should wrap ErrMissingColumn")
	}
	if !errors.Is(err, ErrExtraction) {
		t.Error("error should match ErrExtraction")
	}
}

func TestExtract_UnresolvedHeader(t *testing.T) {
	t.Parallel()

	cols := DefaultColumns()
	cols[FieldState] = Column{Header: "State"}

	_, err := Extract(0, ownerRow("A", "B", "C", "D", "E"), cols)
	if !errors.Is(err, ErrInvalidColumn) {
		t.Errorf("Extract() error = %v, want ErrInvalidColumn", err)
	}
}

func TestExtract_ResolvedHeader(t *testing.T) {
	t.Parallel()

	cols := DefaultColumns()
	cols[FieldState] = Column{Header: "State"}
	resolved, err := ResolveColumns([]string{"a", "b", "state"}, cols)
	if err != nil {
		t.Fatalf("ResolveColumns() error = %v", err)
	}

	row := ownerRow("A", "B", "C", "ignored", "E")
	row[2] = "OR"
	rec, err := Extract(0, row, resolved)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if rec.State != "OR" {
		t.Errorf("State = %q, want %q", rec.State, "OR")
	}
}

func TestSanitizeName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "apostrophe kept, slash replaced", input: "O'Brien/Smith", want: "O'Brien_Smith"},
		{name: "spaces", input: "Jane Q Public", want: "Jane_Q_Public"},
		{name: "empty", input: "", want: ""},
		{name: "other punctuation kept", input: "Smith & Sons, LLC", want: "Smith_&_Sons,_LLC"},
		{name: "unicode kept", input: "José Núñez", want: "José_Núñez"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := SanitizeName(tt.input)
			if got != tt.want {
				t.Errorf("SanitizeName(%q) = %q, want %q", tt.input, got, tt.want)
			}
			if again := SanitizeName(got); again != got {
				t.Errorf("SanitizeName is not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestField_String(t *testing.T) {
	t.Parallel()

	if got := FieldPostalCode.String(); got != "postal code" {
		t.Errorf("FieldPostalCode.String() = %q", got)
	}
	if got := Field(42).String(); got != "field(42)" {
		t.Errorf("Field(42).String() = %q", got)
	}
}

func TestExtractionError_Message(t *testing.T) {
	t.Parallel()

	err := &ExtractionError{Row: 2, Field: FieldCity, Column: Column{Header: "City"}, Err: ErrMissingColumn}
	want := `row 2: city (column "City"): missing column`
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
