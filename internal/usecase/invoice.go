package usecase

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Invoice numbers look like INV-20250101-0001: date prefix plus a 4-digit
// sequence that restarts each calendar day because the prefix changes.
// The format is a durable external contract; it must stay lexically
// sortable by date then sequence.

func invoicePrefix(t time.Time) string {
	return "INV-" + t.Format("20060102")
}

// nextInvoiceNumber derives the successor of last under prefix. last is
// the highest invoice already issued for the day, or "" for the first
// sale of the day.
func nextInvoiceNumber(prefix, last string) string {
	seq := 0
	if last != "" {
		if i := strings.LastIndex(last, "-"); i >= 0 {
			if n, err := strconv.Atoi(last[i+1:]); err == nil {
				seq = n
			}
		}
	}
	return fmt.Sprintf("%s-%04d", prefix, seq+1)
}
