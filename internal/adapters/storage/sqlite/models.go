package sqlite

import (
	"time"

	"medication-tracker/internal/domain/doses"
	"medication-tracker/internal/domain/medications"
)

type medicationRow struct {
	ID         string     `gorm:"type:text;primaryKey"`
	Name       string     `gorm:"not null"`
	Descricao  string     `gorm:"not null;default:''"`
	StartDate  time.Time  `gorm:"not null;index"`
	EndDate    *time.Time `gorm:"index"`
	Times      []string   `gorm:"serializer:json;not null"`
	IsRegular  bool       `gorm:"not null;default:false"`
	Quantity   float64    `gorm:"not null;default:1"`
	Form       string     `gorm:"not null"`
	Unit       string     `gorm:"not null"`
	IsArchived bool       `gorm:"not null;default:false;index"`
	CreatedAt  time.Time  `gorm:"autoCreateTime:false"`
	UpdatedAt  time.Time  `gorm:"autoUpdateTime:false"`
}

func (medicationRow) TableName() string { return "medicamentos" }

type administrationRow struct {
	ID              string        `gorm:"type:text;primaryKey"`
	MedicamentoID   string        `gorm:"not null;uniqueIndex:uq_administracao_dose,priority:1"`
	DataDose        time.Time     `gorm:"not null;uniqueIndex:uq_administracao_dose,priority:2;index"`
	HoraDose        string        `gorm:"not null;uniqueIndex:uq_administracao_dose,priority:3"`
	FoiAdministrado bool          `gorm:"not null;default:false"`
	AdministradoEm  *time.Time    `gorm:"default:null"`
	Medicamento     medicationRow `gorm:"foreignKey:MedicamentoID;constraint:OnDelete:CASCADE"`
}

func (administrationRow) TableName() string { return "administracoes_medicamento" }

func toMedicationRow(m medications.Medication) medicationRow {
	times := m.Times
	if times == nil {
		times = []string{}
	}
	return medicationRow{
		ID:         m.ID,
		Name:       m.Name,
		Descricao:  m.Description,
		StartDate:  medications.Day(m.StartDate),
		EndDate:    dayPtr(m.EndDate),
		Times:      times,
		IsRegular:  m.IsRegular,
		Quantity:   m.Quantity,
		Form:       m.Form,
		Unit:       m.Unit,
		IsArchived: m.Archived,
		CreatedAt:  m.CreatedAt.UTC(),
		UpdatedAt:  m.UpdatedAt.UTC(),
	}
}

func (r medicationRow) toDomain() medications.Medication {
	times := r.Times
	if times == nil {
		times = []string{}
	}
	return medications.Medication{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Descricao,
		StartDate:   medications.Day(r.StartDate),
		EndDate:     dayPtr(r.EndDate),
		Times:       times,
		IsRegular:   r.IsRegular,
		Quantity:    r.Quantity,
		Form:        r.Form,
		Unit:        r.Unit,
		Archived:    r.IsArchived,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func toAdministrationRow(rec doses.AdministrationRecord) administrationRow {
	var at *time.Time
	if rec.AdministeredAt != nil {
		t := rec.AdministeredAt.UTC()
		at = &t
	}
	return administrationRow{
		ID:              rec.ID,
		MedicamentoID:   rec.MedicationID,
		DataDose:        medications.Day(rec.DoseDate),
		HoraDose:        rec.DoseTime.String(),
		FoiAdministrado: rec.Administered,
		AdministradoEm:  at,
	}
}

func (r administrationRow) toDomain() (doses.AdministrationRecord, error) {
	tod, err := medications.ParseTimeOfDay(r.HoraDose)
	if err != nil {
		return doses.AdministrationRecord{}, err
	}
	return doses.AdministrationRecord{
		ID:             r.ID,
		MedicationID:   r.MedicamentoID,
		DoseDate:       medications.Day(r.DataDose),
		DoseTime:       tod,
		Administered:   r.FoiAdministrado,
		AdministeredAt: r.AdministradoEm,
	}, nil
}

func dayPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := medications.Day(*t)
	return &d
}
