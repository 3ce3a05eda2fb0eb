package models

import "time"

type AvailabilitySlot struct {
	Day  string `json:"day"`
	Time string `json:"time"`
}

type Trainer struct {
	ID             int64              `json:"id"`
	FullName       string             `json:"full_name"`
	Specialization *string            `json:"specialization"`
	Bio            *string            `json:"bio"`
	AvatarURL      *string            `json:"avatar_url"`
	Availability   []AvailabilitySlot `json:"availability"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
}

func (t *Trainer) Summary() TrainerSummary {
	return TrainerSummary{
		ID:             t.ID,
		FullName:       t.FullName,
		Specialization: t.Specialization,
		AvatarURL:      t.AvatarURL,
	}
}
