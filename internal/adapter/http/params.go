package http

import (
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

func intQuery(c *gin.Context, name string, def int) int {
	v := c.Query(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// dateRange parses optional startDate/endDate query params (YYYY-MM-DD,
// both inclusive). The end bound is widened to the last instant of its day.
func dateRange(c *gin.Context) (*time.Time, *time.Time, error) {
	var start, end *time.Time
	if s := c.Query("startDate"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return nil, nil, errors.New("startDate must be YYYY-MM-DD")
		}
		start = &t
	}
	if s := c.Query("endDate"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return nil, nil, errors.New("endDate must be YYYY-MM-DD")
		}
		t = t.Add(24*time.Hour - time.Nanosecond)
		end = &t
	}
	if start != nil && end != nil && end.Before(*start) {
		return nil, nil, errors.New("endDate is before startDate")
	}
	return start, end, nil
}
