package lookup

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/evyataryagoni/wataxrate/internal/models"
)

// DefaultBaseURL is the WA Department of Revenue address rate lookup endpoint
// (the "XML URL interface").
const DefaultBaseURL = "https://webgis.dor.wa.gov/webapi/AddressRates.aspx"

// DORCodec speaks the DOR XML URL interface:
//
//	GET AddressRates.aspx?output=xml&addr=<street>&city=<city>&zip=<zip>
//
//	<response loccode="1726" localrate="0.036" rate="0.101" code="0">
//	  <addressline houselow="400" househigh="498" evenodd="E" street="BROAD ST" zip="98109" .../>
//	  <rate name="SEATTLE" code="1726" staterate="0.065" localrate="0.036"/>
//	</response>
type DORCodec struct{}

// Encode implements Codec.
func (DORCodec) Encode(q models.AddressQuery) url.Values {
	return url.Values{
		"output": {"xml"},
		"addr":   {q.Street},
		"city":   {q.City},
		"zip":    {q.ZIP},
	}
}

type dorResponse struct {
	XMLName      xml.Name        `xml:"response"`
	LocationCode string          `xml:"loccode,attr"`
	Rate         *string         `xml:"rate,attr"`
	LocalRate    string          `xml:"localrate,attr"`
	Code         *string         `xml:"code,attr"`
	DebugHint    string          `xml:"debughint,attr"`
	AddressLine  *dorAddressLine `xml:"addressline"`
	Jurisdiction *dorRate        `xml:"rate"`
}

type dorAddressLine struct {
	HouseLow  string `xml:"houselow,attr"`
	HouseHigh string `xml:"househigh,attr"`
	EvenOdd   string `xml:"evenodd,attr"`
	Street    string `xml:"street,attr"`
	ZIP       string `xml:"zip,attr"`
	Plus4     string `xml:"plus4,attr"`
	Period    string `xml:"period,attr"`
	RTA       string `xml:"rta,attr"`
	PTBA      string `xml:"ptba,attr"`
	CEZ       string `xml:"cez,attr"`
}

type dorRate struct {
	Name      string `xml:"name,attr"`
	Code      string `xml:"code,attr"`
	LocalRate string `xml:"localrate,attr"`
	StateRate string `xml:"staterate,attr"`
}

// Decode implements Codec.
func (DORCodec) Decode(body []byte) (*models.TaxInfo, error) {
	var resp dorResponse
	dec := xml.NewDecoder(bytes.NewReader(body))
	if err := dec.Decode(&resp); err != nil {
		return nil, fmt.Errorf("parse DOR response: %w", err)
	}
	if err := expectEOF(dec); err != nil {
		return nil, fmt.Errorf("parse DOR response: %w", err)
	}
	if resp.Code == nil {
		return nil, errors.New("DOR response has no code attribute")
	}
	code, err := models.ParseResultCode(*resp.Code)
	if err != nil {
		return nil, err
	}

	info := &models.TaxInfo{
		LocationCode: strings.TrimSpace(resp.LocationCode),
		ResultCode:   code,
		DebugHint:    resp.DebugHint,
		Address:      resp.AddressLine.toModel(),
	}

	// Rate fields that accompany an error code are garbage; keep whatever
	// parses so the caller can inspect the raw answer, and reject.
	if code.IsError() {
		if resp.Rate != nil {
			info.Rate, _ = parseRate(*resp.Rate)
		}
		info.LocalRate, _ = parseRate(resp.LocalRate)
		info.Jurisdiction, _ = resp.Jurisdiction.toModel()
		cause := errors.New(code.String())
		if resp.DebugHint != "" {
			cause = errors.New(resp.DebugHint)
		}
		return nil, &LookupError{Kind: KindRemoteRejected, Code: code, Info: info, Err: cause}
	}

	if resp.Rate == nil {
		return nil, errors.New("DOR response has no rate attribute")
	}
	if info.Rate, err = parseRate(*resp.Rate); err != nil {
		return nil, fmt.Errorf("rate: %w", err)
	}
	if info.Rate < 0 || info.Rate >= 1 {
		return nil, fmt.Errorf("rate %v is not a fraction in [0, 1)", info.Rate)
	}
	if info.LocalRate, err = parseRate(resp.LocalRate); err != nil {
		return nil, fmt.Errorf("localrate: %w", err)
	}
	if info.Jurisdiction, err = resp.Jurisdiction.toModel(); err != nil {
		return nil, err
	}
	return info, nil
}

// expectEOF rejects anything but whitespace, comments and processing
// instructions after the root element.
func expectEOF(dec *xml.Decoder) error {
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.CharData:
			if len(bytes.TrimSpace(t)) != 0 {
				return fmt.Errorf("unexpected text %q after root element", bytes.TrimSpace(t))
			}
		case xml.Comment, xml.ProcInst:
		default:
			return errors.New("unexpected content after root element")
		}
	}
}

// parseRate parses a decimal rate attribute. An empty attribute is zero.
// NaN and infinities are rejected.
func parseRate(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", s)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%q is not a finite number", s)
	}
	return v, nil
}

func (a *dorAddressLine) toModel() *models.AddressLine {
	if a == nil {
		return nil
	}
	low, _ := strconv.Atoi(strings.TrimSpace(a.HouseLow))
	high, _ := strconv.Atoi(strings.TrimSpace(a.HouseHigh))
	return &models.AddressLine{
		HouseLow:  low,
		HouseHigh: high,
		EvenOdd:   a.EvenOdd,
		Street:    a.Street,
		ZIP:       a.ZIP,
		Plus4:     a.Plus4,
		Period:    a.Period,
		RTA:       a.RTA,
		PTBA:      a.PTBA,
		CEZ:       a.CEZ,
	}
}

func (r *dorRate) toModel() (*models.Jurisdiction, error) {
	if r == nil {
		return nil, nil
	}
	local, err := parseRate(r.LocalRate)
	if err != nil {
		return nil, fmt.Errorf("jurisdiction localrate: %w", err)
	}
	state, err := parseRate(r.StateRate)
	if err != nil {
		return nil, fmt.Errorf("jurisdiction staterate: %w", err)
	}
	return &models.Jurisdiction{
		Name:      r.Name,
		Code:      r.Code,
		LocalRate: local,
		StateRate: state,
	}, nil
}
