package inventory

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestParse_CSV(t *testing.T) {
	csv := strings.Join([]string{
		"subnet,account,region,TAGS,vpc",
		`10.0.0.0/24,123456789,us-east-1,"Environment=prod,Owner=neteng",vpc-1`,
		`10.0.1.0/24,123456789,us-east-1,,vpc-1`,
	}, "\n")

	result, err := NewParser().Parse(strings.NewReader(csv), FormatCSV)
	require.NoError(t, err)
	require.Len(t, result.Records, 2)
	assert.Empty(t, result.Skipped)

	first := result.Records[0]
	assert.Equal(t, "10.0.0.0/24", first.Subnet)
	assert.Equal(t, "123456789", first.Account)
	assert.Equal(t, "us-east-1", first.Region)
	assert.Equal(t, map[string]string{"Environment": "prod", "Owner": "neteng"}, first.Tags)
	assert.Equal(t, "vpc-1", first.RawFields["vpc"])

	// Empty tag cell -> empty tag set
	assert.Empty(t, result.Records[1].Tags)
}

func TestParse_HeaderNormalization(t *testing.T) {
	csv := strings.Join([]string{
		" Subnet , ACCOUNT ,Region,Tag",
		"10.0.0.0/24,acct,eu-west-1,k=v",
	}, "\n")

	result, err := NewParser().Parse(strings.NewReader(csv), FormatCSV)
	require.NoError(t, err)
	require.Len(t, result.Records, 1)
	assert.Equal(t, "acct", result.Records[0].Account)
	assert.Equal(t, map[string]string{"k": "v"}, result.Records[0].Tags)
}

func TestParse_MissingColumnsListedTogether(t *testing.T) {
	csv := "subnet\n10.0.0.0/24"

	_, err := NewParser().Parse(strings.NewReader(csv), FormatCSV)
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	// Every missing column is reported, not just the first
	require.Len(t, verr.Problems, 3)
	assert.Contains(t, verr.Error(), "account")
	assert.Contains(t, verr.Error(), "region")
	assert.Contains(t, verr.Error(), "TAG column")
}

func TestParse_SkipsEmptySubnetRows(t *testing.T) {
	csv := strings.Join([]string{
		"subnet,account,region,tags",
		",acct,us-east-1,k=v",
		"10.0.0.0/24,acct,us-east-1,k=v",
		"   ,acct,us-east-1,k=v",
	}, "\n")

	result, err := NewParser().Parse(strings.NewReader(csv), FormatCSV)
	require.NoError(t, err)
	require.Len(t, result.Records, 1)
	assert.Empty(t, result.Skipped)
}

func TestParse_InvalidSubnetsReportedPerRow(t *testing.T) {
	csv := strings.Join([]string{
		"subnet,account,region,tags",
		"10.0.0.0/24,acct,us-east-1,",
		"not-a-subnet,acct,us-east-1,",
		"224.0.0.0/24,acct,us-east-1,",
		"10.0.0.0/7,acct,us-east-1,",
		"2001:db8::/32,acct,us-east-1,",
	}, "\n")

	result, err := NewParser().Parse(strings.NewReader(csv), FormatCSV)
	require.NoError(t, err)
	require.Len(t, result.Records, 1)
	require.Len(t, result.Skipped, 4)
	assert.Contains(t, result.Skipped[0], "row 3")
	assert.Contains(t, result.Skipped[1], "reserved")
	assert.Contains(t, result.Skipped[2], "prefix length")
	assert.Contains(t, result.Skipped[3], "IPv4")
}

func TestParse_CanonicalizesSubnets(t *testing.T) {
	csv := strings.Join([]string{
		"subnet,account,region,tags",
		"10.0.0.5/24,acct,us-east-1,",
	}, "\n")

	result, err := NewParser().Parse(strings.NewReader(csv), FormatCSV)
	require.NoError(t, err)
	require.Len(t, result.Records, 1)
	assert.Equal(t, "10.0.0.0/24", result.Records[0].Subnet)
}

func TestParse_OrderMatchesInput(t *testing.T) {
	csv := strings.Join([]string{
		"subnet,account,region,tags",
		"10.0.2.0/24,a,r,",
		"10.0.0.0/24,a,r,",
		"10.0.1.0/24,a,r,",
	}, "\n")

	result, err := NewParser().Parse(strings.NewReader(csv), FormatCSV)
	require.NoError(t, err)

	var subnets []string
	for _, rec := range result.Records {
		subnets = append(subnets, rec.Subnet)
	}
	assert.Equal(t, []string{"10.0.2.0/24", "10.0.0.0/24", "10.0.1.0/24"}, subnets)
}

func TestParse_XLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"subnet", "account", "region", "TAGS"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{"10.0.0.0/24", "acct", "us-east-1", "Environment=prod"}))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	require.NoError(t, f.Close())

	result, err := NewParser().Parse(bytes.NewReader(buf.Bytes()), FormatXLSX)
	require.NoError(t, err)
	require.Len(t, result.Records, 1)
	assert.Equal(t, "10.0.0.0/24", result.Records[0].Subnet)
	assert.Equal(t, map[string]string{"Environment": "prod"}, result.Records[0].Tags)
}

func TestDetectFormat(t *testing.T) {
	assert.Equal(t, FormatXLSX, DetectFormat("export.xlsx"))
	assert.Equal(t, FormatXLSX, DetectFormat("EXPORT.XLSX"))
	assert.Equal(t, FormatCSV, DetectFormat("export.csv"))
	assert.Equal(t, FormatCSV, DetectFormat("export"))
}
