package reportsvc

import (
	"context"
	"strings"
	"time"

	"kitabu/model"
	reportrepo "kitabu/repository/report"
	"kitabu/util/errcode"
)

var months = map[string]bool{
	"Jan": true, "Feb": true, "Mar": true, "Apr": true, "May": true, "Jun": true,
	"Jul": true, "Aug": true, "Sep": true, "Oct": true, "Nov": true, "Dec": true,
}

type Repo interface {
	Dashboard(ctx context.Context, since time.Time) (*reportrepo.Dashboard, error)
	SalesByMonth(ctx context.Context, month string) ([]reportrepo.MonthCount, error)
	BorrowingsByMonth(ctx context.Context, month string) ([]reportrepo.MonthCount, error)
}

type Service interface {
	Dashboard(ctx context.Context, c model.Caller) (*reportrepo.Dashboard, error)
	Sales(ctx context.Context, c model.Caller, month string) ([]reportrepo.MonthCount, error)
	Borrowing(ctx context.Context, c model.Caller, month string) ([]reportrepo.MonthCount, error)
}

type service struct {
	r   Repo
	now func() time.Time
}

func New(r Repo) Service { return &service{r: r, now: time.Now} }

func (s *service) Dashboard(ctx context.Context, c model.Caller) (*reportrepo.Dashboard, error) {
	if !c.IsAdmin() {
		return nil, errcode.New(errcode.Forbidden)
	}
	now := s.now().UTC()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return s.r.Dashboard(ctx, start)
}

func (s *service) Sales(ctx context.Context, c model.Caller, month string) ([]reportrepo.MonthCount, error) {
	m, err := checkMonth(c, month)
	if err != nil {
		return nil, err
	}
	return s.r.SalesByMonth(ctx, m)
}

func (s *service) Borrowing(ctx context.Context, c model.Caller, month string) ([]reportrepo.MonthCount, error) {
	m, err := checkMonth(c, month)
	if err != nil {
		return nil, err
	}
	return s.r.BorrowingsByMonth(ctx, m)
}

// checkMonth normalises "jan", "JAN" and "All" to the form the repository filters on.
func checkMonth(c model.Caller, month string) (string, error) {
	if !c.IsAdmin() {
		return "", errcode.New(errcode.Forbidden)
	}
	m := strings.TrimSpace(month)
	if m == "" || strings.EqualFold(m, "all") {
		return "", nil
	}
	if len(m) >= 3 {
		m = strings.ToUpper(m[:1]) + strings.ToLower(m[1:3])
	}
	if !months[m] {
		return "", errcode.Newf(errcode.BadInput, "month must be a three-letter abbreviation like Jan")
	}
	return m, nil
}
