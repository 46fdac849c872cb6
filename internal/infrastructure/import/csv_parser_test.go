package csvimport

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCSVParser(t *testing.T) {
	t.Run("Valid UTF-8 CSV", func(t *testing.T) {
		csv := "name,age,city\nAlice,30,New York\nBob,25,Boston"
		parser, err := NewCSVParser(strings.NewReader(csv))

		require.NoError(t, err)
		require.NotNil(t, parser)
	})

	t.Run("UTF-8 BOM is stripped", func(t *testing.T) {
		// UTF-8 BOM: 0xEF, 0xBB, 0xBF
		csv := "\xEF\xBB\xBFname,age\nAlice,30"
		parser, err := NewCSVParser(strings.NewReader(csv))

		require.NoError(t, err)
		require.NotNil(t, parser)

		err = parser.ParseHeader()
		require.NoError(t, err)

		// Header should not include BOM
		headers := parser.Headers()
		assert.Equal(t, "name", headers[0])
	})

	t.Run("Empty file returns error", func(t *testing.T) {
		parser, err := NewCSVParser(strings.NewReader(""))

		assert.Error(t, err)
		assert.Nil(t, parser)
		assert.ErrorIs(t, err, ErrEmptyFile)
	})

	t.Run("Custom delimiter", func(t *testing.T) {
		csv := "name;age;city\nAlice;30;NYC"
		parser, err := NewCSVParser(strings.NewReader(csv), WithDelimiter(';'))

		require.NoError(t, err)
		require.NoError(t, parser.ParseHeader())

		headers := parser.Headers()
		assert.Equal(t, []string{"name", "age", "city"}, headers)
	})
}

func TestParseHeader(t *testing.T) {
	t.Run("Valid header", func(t *testing.T) {
		csv := "employee_no,email,balance\nE-001,amy@acme.test,10.00"
		parser, _ := NewCSVParser(strings.NewReader(csv))

		err := parser.ParseHeader()

		require.NoError(t, err)
		assert.Equal(t, []string{"employee_no", "email", "balance"}, parser.Headers())
		assert.Equal(t, map[string]int{"employee_no": 0, "email": 1, "balance": 2}, parser.HeaderMap())
	})

	t.Run("Header with spaces trimmed", func(t *testing.T) {
		csv := "  employee_no  ,  email  ,  balance  \nE-001,amy@acme.test,10.00"
		parser, _ := NewCSVParser(strings.NewReader(csv))

		err := parser.ParseHeader()

		require.NoError(t, err)
		assert.Equal(t, []string{"employee_no", "email", "balance"}, parser.Headers())
	})

	t.Run("HasHeader check", func(t *testing.T) {
		csv := "employee_no,email,balance\nE-001,amy@acme.test,10.00"
		parser, _ := NewCSVParser(strings.NewReader(csv))
		parser.ParseHeader()

		assert.True(t, parser.HasHeader("employee_no"))
		assert.True(t, parser.HasHeader("email"))
		assert.False(t, parser.HasHeader("description"))
	})

	t.Run("ValidateHeaders finds missing", func(t *testing.T) {
		csv := "employee_no,email\nE-001,amy@acme.test"
		parser, _ := NewCSVParser(strings.NewReader(csv))
		parser.ParseHeader()

		missing := parser.ValidateHeaders([]string{"employee_no", "email", "balance", "department"})
		assert.ElementsMatch(t, []string{"balance", "department"}, missing)
	})
}

func TestReadRow(t *testing.T) {
	t.Run("Read single row", func(t *testing.T) {
		csv := "employee_no,email,balance\nE-001,amy@acme.test,10.00"
		parser, _ := NewCSVParser(strings.NewReader(csv))
		parser.ParseHeader()

		row, err := parser.ReadRow()

		require.NoError(t, err)
		assert.Equal(t, 2, row.LineNumber)
		assert.Equal(t, "E-001", row.Get("employee_no"))
		assert.Equal(t, "amy@acme.test", row.Get("email"))
		assert.Equal(t, "10.00", row.Get("balance"))
	})

	t.Run("Row with missing columns", func(t *testing.T) {
		csv := "employee_no,email,balance,department\nE-001,amy@acme.test"
		parser, _ := NewCSVParser(strings.NewReader(csv))
		parser.ParseHeader()

		row, err := parser.ReadRow()

		require.NoError(t, err)
		assert.Equal(t, "E-001", row.Get("employee_no"))
		assert.Equal(t, "amy@acme.test", row.Get("email"))
		assert.Equal(t, "", row.Get("balance"))
		assert.Equal(t, "", row.Get("department"))
	})

	t.Run("GetOrDefault", func(t *testing.T) {
		csv := "employee_no,email,balance\nE-001,amy@acme.test,"
		parser, _ := NewCSVParser(strings.NewReader(csv))
		parser.ParseHeader()

		row, _ := parser.ReadRow()

		assert.Equal(t, "E-001", row.GetOrDefault("employee_no", "default"))
		assert.Equal(t, "N/A", row.GetOrDefault("balance", "N/A"))
		assert.Equal(t, "none", row.GetOrDefault("missing", "none"))
	})

	t.Run("IsEmpty row", func(t *testing.T) {
		csv := "employee_no,email\n,,\nE-001,amy@acme.test"
		parser, _ := NewCSVParser(strings.NewReader(csv))
		parser.ParseHeader()

		row1, _ := parser.ReadRow()
		assert.True(t, row1.IsEmpty())

		row2, _ := parser.ReadRow()
		assert.False(t, row2.IsEmpty())
	})

	t.Run("EOF after last row", func(t *testing.T) {
		csv := "employee_no,email\nE-001,amy@acme.test"
		parser, _ := NewCSVParser(strings.NewReader(csv))
		parser.ParseHeader()

		_, err := parser.ReadRow()
		require.NoError(t, err)

		_, err = parser.ReadRow()
		assert.Equal(t, io.EOF, err)
	})
}

func TestReadAllRows(t *testing.T) {
	t.Run("Read all rows", func(t *testing.T) {
		csv := "employee_no,email\nE-001,amy@acme.test\nE-002,ben@acme.test\nE-003,cal@acme.test"
		parser, _ := NewCSVParser(strings.NewReader(csv))
		parser.ParseHeader()

		rows, err := parser.ReadAllRows()

		require.NoError(t, err)
		assert.Len(t, rows, 3)
		assert.Equal(t, "E-001", rows[0].Get("employee_no"))
		assert.Equal(t, "E-002", rows[1].Get("employee_no"))
		assert.Equal(t, "E-003", rows[2].Get("employee_no"))
	})

	t.Run("Skip empty rows", func(t *testing.T) {
		csv := "employee_no,email\nE-001,amy@acme.test\n,,\n,,\nE-002,ben@acme.test"
		parser, _ := NewCSVParser(strings.NewReader(csv))
		parser.ParseHeader()

		rows, err := parser.ReadAllRows()

		require.NoError(t, err)
		assert.Len(t, rows, 2)
	})

	t.Run("TotalRows count", func(t *testing.T) {
		csv := "employee_no,email\nE-001,amy@acme.test\nE-002,ben@acme.test\nE-003,cal@acme.test"
		parser, _ := NewCSVParser(strings.NewReader(csv))
		parser.ParseHeader()

		parser.ReadAllRows()

		assert.Equal(t, 3, parser.TotalRows())
	})
}

func TestParseFromBytes(t *testing.T) {
	t.Run("Parse from byte slice", func(t *testing.T) {
		data := []byte("employee_no,email\nE-001,amy@acme.test")
		parser, err := ParseFromBytes(data)

		require.NoError(t, err)
		require.NoError(t, parser.ParseHeader())

		row, _ := parser.ReadRow()
		assert.Equal(t, "E-001", row.Get("employee_no"))
	})
}

func TestQuotedFields(t *testing.T) {
	t.Run("Fields with quotes", func(t *testing.T) {
		csv := `employee_no,display_name,note
E-001,"Amy","New hire"
E-002,"Ben","Contains, comma"
E-003,"Cal ""CJ""","With ""quotes"""
`
		parser, _ := NewCSVParser(strings.NewReader(csv))
		parser.ParseHeader()

		row1, _ := parser.ReadRow()
		assert.Equal(t, "Amy", row1.Get("display_name"))
		assert.Equal(t, "New hire", row1.Get("note"))

		row2, _ := parser.ReadRow()
		assert.Equal(t, "Contains, comma", row2.Get("note"))

		row3, _ := parser.ReadRow()
		assert.Equal(t, `Cal "CJ"`, row3.Get("display_name"))
		assert.Equal(t, `With "quotes"`, row3.Get("note"))
	})
}

func TestMultilineFields(t *testing.T) {
	t.Run("Fields with newlines", func(t *testing.T) {
		csv := "employee_no,email,note\nE-001,amy@acme.test,\"Line 1\nLine 2\nLine 3\""
		parser, _ := NewCSVParser(strings.NewReader(csv))
		parser.ParseHeader()

		row, _ := parser.ReadRow()
		assert.Equal(t, "Line 1\nLine 2\nLine 3", row.Get("note"))
	})
}

func TestGetColumnIndex(t *testing.T) {
	csv := "employee_no,email,balance\nE-001,amy@acme.test,10.00"
	parser, _ := NewCSVParser(strings.NewReader(csv))
	parser.ParseHeader()

	idx, ok := parser.GetColumnIndex("email")
	assert.True(t, ok)
	assert.Equal(t, 1, idx)

	_, ok = parser.GetColumnIndex("missing")
	assert.False(t, ok)
}
