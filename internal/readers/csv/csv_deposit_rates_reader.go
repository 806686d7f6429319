package csv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	readers "github.com/zdziszkee/product-rates/internal/readers"
)

type CSVDepositRatesReader struct{}

const ExpectedHeader = "RATE KEY,RATE TYPE,RATE,CALCULATION FREQUENCY,APPLICATION FREQUENCY,ADDITIONAL VALUE,ADDITIONAL INFO,ADDITIONAL INFO URI,TIER NAME,UNIT OF MEASURE,MINIMUM VALUE,MAXIMUM VALUE,RATE APPLICATION METHOD"

// ReadDepositRates reads a rate sheet. Header names are matched ignoring
// case and surrounding spaces; an empty input yields no records.
func (c *CSVDepositRatesReader) ReadDepositRates(reader io.Reader) ([]readers.DepositRateRecord, error) {
	csvReader := csv.NewReader(reader)
	csvReader.TrimLeadingSpace = true
	csvReader.ReuseRecord = true

	header, err := csvReader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return []readers.DepositRateRecord{}, nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	expectedHeaders := strings.Split(ExpectedHeader, ",")
	if len(header) != len(expectedHeaders) {
		return nil, fmt.Errorf("invalid header length: expected %d, got %d", len(expectedHeaders), len(header))
	}
	for i, col := range header {
		if strings.ToUpper(strings.TrimSpace(col)) != expectedHeaders[i] {
			return nil, fmt.Errorf("invalid header: expected '%s' at index %d, got '%s'", expectedHeaders[i], i, col)
		}
	}

	records := []readers.DepositRateRecord{}
	rowNum := 1
	for {
		row, err := csvReader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", rowNum, err)
		}

		get := func(i int) string {
			return strings.TrimSpace(row[i])
		}

		records = append(records, readers.DepositRateRecord{
			Index:                 rowNum,
			RateKey:               get(0),
			RateType:              get(1),
			Rate:                  get(2),
			CalculationFrequency:  get(3),
			ApplicationFrequency:  get(4),
			AdditionalValue:       get(5),
			AdditionalInfo:        get(6),
			AdditionalInfoURI:     get(7),
			TierName:              get(8),
			UnitOfMeasure:         get(9),
			MinimumValue:          get(10),
			MaximumValue:          get(11),
			RateApplicationMethod: get(12),
		})
		rowNum++
	}

	return records, nil
}
