package models

import (
	"errors"
	"testing"
)

func TestDependentValidate(t *testing.T) {
	tests := []struct {
		name    string
		dep     Dependent
		wantErr error
		wantCPF string
	}{
		{
			name:    "valid with formatted cpf",
			dep:     Dependent{Name: "Maria da Silva", CPF: "529.982.247-25"},
			wantCPF: "52998224725",
		},
		{
			name:    "valid with accented name",
			dep:     Dependent{Name: "João Conceição", CPF: "11144477735"},
			wantCPF: "11144477735",
		},
		{
			name:    "empty name",
			dep:     Dependent{Name: "   ", CPF: "52998224725"},
			wantErr: ErrInvalidDependentName,
		},
		{
			name:    "name with digits",
			dep:     Dependent{Name: "Maria 2", CPF: "52998224725"},
			wantErr: ErrInvalidDependentName,
		},
		{
			name:    "bad check digit",
			dep:     Dependent{Name: "Maria da Silva", CPF: "52998224726"},
			wantErr: ErrInvalidCPF,
		},
		{
			name:    "all identical digits",
			dep:     Dependent{Name: "Maria da Silva", CPF: "111.111.111-11"},
			wantErr: ErrInvalidCPF,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.dep.Validate()
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Validate() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Validate() unexpected error: %v", err)
			}
			if tt.dep.CPF != tt.wantCPF {
				t.Errorf("CPF = %q, want normalized %q", tt.dep.CPF, tt.wantCPF)
			}
		})
	}
}

func TestDependentValidateTrimsName(t *testing.T) {
	dep := Dependent{Name: "  Ana Souza  ", CPF: "52998224725"}
	if err := dep.Validate(); err != nil {
		t.Fatalf("Validate() unexpected error: %v", err)
	}
	if dep.Name != "Ana Souza" {
		t.Errorf("Name = %q, want trimmed", dep.Name)
	}
}
