package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchell1972/cafesnearme/internal/domain"
)

const csvHeader = "name,address,postcode,city,latitude,longitude\n"

func TestImportCSV_AllRowsSucceed(t *testing.T) {
	repo := &fakeRepo{}
	cache := &fakeCache{}
	svc := NewImportService(repo, cache)

	data := csvHeader +
		"Beanery,1 High St,NW1 8QP,London,51.54,-0.14\n" +
		"Grind,2 Long Ln,EC1A 9HF,London,51.52,-0.10\n"

	report, err := svc.ImportCSV(context.Background(), "cafes.csv", []byte(data))
	require.NoError(t, err)

	assert.True(t, report.Success)
	assert.Equal(t, 2, report.TotalRows)
	assert.Equal(t, 2, report.SuccessCount)
	assert.Equal(t, 0, report.FailedCount)
	assert.Empty(t, report.Errors)

	require.Len(t, repo.upserts, 2)
	assert.Equal(t, "beanery-london-nw1-8qp", repo.upserts[0].Slug)

	require.Len(t, repo.logs, 1)
	assert.Equal(t, domain.ImportStatusSuccess, repo.logs[0].Status)
	assert.Equal(t, "cafes.csv", repo.logs[0].Filename)

	assert.Contains(t, cache.deleted, "cafe:beanery-london-nw1-8qp")
	assert.Contains(t, cache.deleted, "cities")
}

func TestImportCSV_BadRowDoesNotStopBatch(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewImportService(repo, &fakeCache{})

	data := csvHeader +
		"Beanery,1 High St,NW1 8QP,London,,\n" +
		",missing name,XX1 1XX,London,,\n" +
		"Grind,2 Long Ln,EC1A 9HF,London,,\n"

	report, err := svc.ImportCSV(context.Background(), "cafes.csv", []byte(data))
	require.NoError(t, err)

	assert.False(t, report.Success)
	assert.Equal(t, 3, report.TotalRows)
	assert.Equal(t, 2, report.SuccessCount)
	assert.Equal(t, 1, report.FailedCount)
	require.Len(t, report.Errors, 1)
	// first data row is source row 2, so the bad second row is row 3
	assert.Contains(t, report.Errors[0], "row 3:")

	require.Len(t, repo.logs, 1)
	assert.Equal(t, domain.ImportStatusPartial, repo.logs[0].Status)
}

func TestImportCSV_ParseFailure(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewImportService(repo, &fakeCache{})

	report, err := svc.ImportCSV(context.Background(), "empty.csv", []byte("name,address\n"))
	require.NoError(t, err)

	assert.False(t, report.Success)
	assert.Equal(t, 0, report.TotalRows)
	require.Len(t, report.Errors, 1)

	require.Len(t, repo.logs, 1)
	assert.Equal(t, domain.ImportStatusFailed, repo.logs[0].Status)
}

func TestImportCSV_StoredErrorsTruncated(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewImportService(repo, &fakeCache{})

	var b strings.Builder
	b.WriteString(csvHeader)
	for i := 0; i < 15; i++ {
		fmt.Fprintf(&b, ",no name %d,XX1 1XX,London,,\n", i)
	}

	report, err := svc.ImportCSV(context.Background(), "bad.csv", []byte(b.String()))
	require.NoError(t, err)

	// response carries every error, the audit row keeps only the first 10
	assert.Len(t, report.Errors, 15)
	require.Len(t, repo.logs, 1)
	assert.Len(t, repo.logs[0].Errors, storedErrorLimit)
}

func TestImportCSV_StorageErrorIsFatal(t *testing.T) {
	repo := &fakeRepo{upsertErr: errors.New("connection refused")}
	svc := NewImportService(repo, &fakeCache{})

	data := csvHeader +
		"Beanery,1 High St,NW1 8QP,London,,\n" +
		"Grind,2 Long Ln,EC1A 9HF,London,,\n"

	report, err := svc.ImportCSV(context.Background(), "cafes.csv", []byte(data))
	require.Error(t, err)

	assert.Equal(t, 0, report.SuccessCount)
	assert.Equal(t, 1, report.FailedCount)
	require.Len(t, repo.logs, 1)
	assert.Equal(t, domain.ImportStatusFailed, repo.logs[0].Status)
}

func TestImportCSV_RowObserverSeesEveryRow(t *testing.T) {
	svc := NewImportService(&fakeRepo{}, &fakeCache{})
	counts := map[string]int{}
	svc.OnRow = func(result string) { counts[result]++ }

	data := csvHeader +
		"Beanery,1 High St,NW1 8QP,London,,\n" +
		",no name,XX1 1XX,London,,\n"

	_, err := svc.ImportCSV(context.Background(), "cafes.csv", []byte(data))
	require.NoError(t, err)

	assert.Equal(t, 1, counts["ok"])
	assert.Equal(t, 1, counts["failed"])
}

func TestImportFile_UnsupportedExtension(t *testing.T) {
	svc := NewImportService(&fakeRepo{}, &fakeCache{})
	_, err := svc.ImportFile(context.Background(), "cafes.pdf", []byte("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file type")
}

func TestMapOutscraperRow(t *testing.T) {
	c, err := mapOutscraperRow(Row{
		"name":         "Flat White Spot",
		"full_address": "9 Berwick St, Soho, London",
		"postal_code":  "w1f 0pj",
		"latitude":     "51.5139",
		"longitude":    "-0.1352",
		"borough":      "Westminster",
		"site":         "https://fws.example",
		"about":        "Tiny espresso bar",
		"subtypes":     "Coffee shop, Espresso bar",
		"category":     "Cafe",
		"price_level":  "££",
		"reviews":      "321",
		"photo":        "https://img.example/1.jpg",
	}, 1)
	require.NoError(t, err)

	assert.Equal(t, "W1F 0PJ", c.Postcode)
	assert.Equal(t, "London", c.City)
	require.NotNil(t, c.Area)
	assert.Equal(t, "Westminster", *c.Area)
	assert.Equal(t, []string{"Coffee shop", "Espresso bar"}, c.Amenities)
	assert.Equal(t, []string{"Cafe"}, c.Features)
	require.NotNil(t, c.ReviewCount)
	assert.Equal(t, 321, *c.ReviewCount)
	assert.Equal(t, 51.5139, c.Lat)
}

func TestMapOutscraperRow_CityDefaultsToLondon(t *testing.T) {
	c, err := mapOutscraperRow(Row{"name": "Spot", "full_address": "Somewhere"}, 4)
	require.NoError(t, err)
	assert.Equal(t, "London", c.City)

	_, err = mapOutscraperRow(Row{"name": "Spot"}, 4)
	require.Error(t, err)
	assert.Equal(t, "row 4: missing required fields: name or address", err.Error())
}
