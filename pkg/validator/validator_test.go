package validator

import (
	"testing"

	"github.com/google/uuid"
)

type sampleRequest struct {
	ProductID uuid.UUID `validate:"uuid_required"`
	Quantity  int       `validate:"required,gt=0"`
}

func TestValidateStructPasses(t *testing.T) {
	errs := ValidateStruct(&sampleRequest{ProductID: uuid.New(), Quantity: 3})
	if len(errs) != 0 {
		t.Fatalf("errors = %v, want none", errs)
	}
}

func TestValidateStructRejectsNilUUID(t *testing.T) {
	errs := ValidateStruct(&sampleRequest{Quantity: 3})
	if len(errs) != 1 {
		t.Fatalf("errors = %d, want 1", len(errs))
	}
	if errs[0].Tag != "uuid_required" {
		t.Errorf("tag = %s, want uuid_required", errs[0].Tag)
	}
}

func TestValidateStructRejectsZeroQuantity(t *testing.T) {
	errs := ValidateStruct(&sampleRequest{ProductID: uuid.New()})
	if len(errs) != 1 {
		t.Fatalf("errors = %d, want 1", len(errs))
	}
}
