package model

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BeforeCreate hooks assign ids client-side so inserts do not depend on a
// database-side uuid default.

func (u *User) BeforeCreate(*gorm.DB) error                 { u.ID = ensureID(u.ID); return nil }
func (v *Vehicle) BeforeCreate(*gorm.DB) error              { v.ID = ensureID(v.ID); return nil }
func (s *Service) BeforeCreate(*gorm.DB) error              { s.ID = ensureID(s.ID); return nil }
func (p *SparePart) BeforeCreate(*gorm.DB) error            { p.ID = ensureID(p.ID); return nil }
func (r *ServiceRequest) BeforeCreate(*gorm.DB) error       { r.ID = ensureID(r.ID); return nil }
func (w *WorkOrder) BeforeCreate(*gorm.DB) error            { w.ID = ensureID(w.ID); return nil }
func (l *WorkOrderServiceLine) BeforeCreate(*gorm.DB) error { l.ID = ensureID(l.ID); return nil }
func (l *WorkOrderPartLine) BeforeCreate(*gorm.DB) error    { l.ID = ensureID(l.ID); return nil }
func (a *AuditLog) BeforeCreate(*gorm.DB) error             { a.ID = ensureID(a.ID); return nil }

func ensureID(id uuid.UUID) uuid.UUID {
	if id == uuid.Nil {
		return uuid.New()
	}
	return id
}
