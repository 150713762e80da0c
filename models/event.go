package models

import (
	"time"
)

type EventCategory string

const (
	CategorySocial    EventCategory = "social"
	CategoryAcademico EventCategory = "academico"
	CategoryCultural  EventCategory = "cultural"
	CategoryComercial EventCategory = "comercial"
	CategoryTaller    EventCategory = "taller"
	CategoryOtro      EventCategory = "otro"
)

func (c EventCategory) Valid() bool {
	switch c {
	case CategorySocial, CategoryAcademico, CategoryCultural, CategoryComercial, CategoryTaller, CategoryOtro:
		return true
	}
	return false
}

type EventStatus string

const (
	StatusProximo    EventStatus = "proximo"
	StatusEnCurso    EventStatus = "en_curso"
	StatusFinalizado EventStatus = "finalizado"
	// StatusCancelado is terminal and only ever set through the deletion
	// path, never by time-based reconciliation.
	StatusCancelado EventStatus = "cancelado"
)

func (s EventStatus) Valid() bool {
	switch s {
	case StatusProximo, StatusEnCurso, StatusFinalizado, StatusCancelado:
		return true
	}
	return false
}

// Terminal reports whether the status can no longer change.
func (s EventStatus) Terminal() bool {
	return s == StatusFinalizado || s == StatusCancelado
}

type Event struct {
	ID               string        `json:"id"`
	Title            string        `json:"title"`
	Description      string        `json:"description"`
	Location         string        `json:"location"`
	StartDate        time.Time     `json:"start_date"`
	EndDate          time.Time     `json:"end_date"`
	Category         EventCategory `json:"category"`
	Status           EventStatus   `json:"status"`
	MaxAttendees     *int          `json:"max_attendees"`
	CurrentAttendees int           `json:"current_attendees"`
	CreatedBy        string        `json:"created_by"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}
