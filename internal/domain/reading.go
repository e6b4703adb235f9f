package domain

import "time"

type ReadingEntry struct {
	User     UserID
	UserName string
	Book     BookRecord
	SetAt    time.Time
}

func (e ReadingEntry) Clone() ReadingEntry {
	out := e
	out.Book = e.Book.Clone()
	return out
}
