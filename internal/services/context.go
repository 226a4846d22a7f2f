package services

import "time"

// RequestCtx — явный контекст одной обработки: фиксированное "сейчас" и
// идентификаторы, от имени которых идёт запись. Передаётся параметром,
// никакого неявного глобального состояния.
type RequestCtx struct {
	Now       time.Time
	CompanyID uint64
	UserID    *uint64
}

func NewRequestCtx(now time.Time) RequestCtx {
	return RequestCtx{Now: now}
}
