package web

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/denismitr/paysheet/export"
	"github.com/denismitr/paysheet/internal/form"
	"github.com/denismitr/paysheet/internal/transcode"
	"github.com/denismitr/paysheet/internal/xlsx"
	"github.com/denismitr/paysheet/kv"
	"github.com/stretchr/testify/suite"
	"github.com/tidwall/gjson"
)

const anaJSON = `{"firstName":"Ana","lastName":"Gomez","company":"Empresa A","amount":150.50,"paymentMethod":"Card"}`

type copyRecorder struct {
	blobs [][]byte
}

func (c *copyRecorder) Offer(blob []byte, fileName string) error {
	c.blobs = append(c.blobs, blob)
	return nil
}

type serverTestSuite struct {
	suite.Suite
	db     *kv.DB
	closer kv.Closer
	copies *copyRecorder
	srv    *Server
}

func TestServer(t *testing.T) {
	suite.Run(t, &serverTestSuite{})
}

func (sts *serverTestSuite) SetupTest() {
	db, closer, err := kv.Open(kv.InMemory)
	sts.Require().NoError(err)

	sts.db = db
	sts.closer = closer
	sts.copies = &copyRecorder{}
	sts.srv = NewServer(db, sts.options(false))
}

func (sts *serverTestSuite) TearDownTest() {
	sts.Require().NoError(sts.closer())
}

func (sts *serverTestSuite) options(headless bool) Options {
	return Options{
		KeyPrefix: "paysheet:",
		FileName:  "payments.xlsx",
		SheetName: "Payments",
		Downloads: sts.copies,
		Headless:  headless,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		Now: func() time.Time {
			return time.Date(2024, time.January, 1, 10, 0, 0, 0, time.UTC)
		},
	}
}

func (sts *serverTestSuite) do(method, target, contentType, body string, headers ...string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, target, r)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	rec := httptest.NewRecorder()
	sts.srv.Router().ServeHTTP(rec, req)
	return rec
}

func (sts *serverTestSuite) appendJSON(dataset, body string) *httptest.ResponseRecorder {
	return sts.do(http.MethodPost, "/api/datasets/"+dataset+"/payments", "application/json", body)
}

func (sts *serverTestSuite) payments(dataset string) []gjson.Result {
	rec := sts.do(http.MethodGet, "/api/datasets/"+dataset+"/payments", "", "")
	sts.Require().Equal(http.StatusOK, rec.Code)
	return gjson.Get(rec.Body.String(), "payments").Array()
}

func (sts *serverTestSuite) TestHealth() {
	rec := sts.do(http.MethodGet, "/healthz", "", "")
	sts.Equal(http.StatusOK, rec.Code)
	sts.Equal("ok", gjson.Get(rec.Body.String(), "status").String())
	sts.Equal("nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func (sts *serverTestSuite) TestCompanies() {
	rec := sts.do(http.MethodGet, "/api/companies", "", "")
	sts.Require().Equal(http.StatusOK, rec.Code)

	var companies []string
	for _, c := range gjson.Get(rec.Body.String(), "companies").Array() {
		companies = append(companies, c.String())
	}
	sts.Equal(form.Companies, companies)
}

func (sts *serverTestSuite) TestAppendThenList() {
	rec := sts.appendJSON("main", anaJSON)
	sts.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())

	body := rec.Body.String()
	sts.True(gjson.Get(body, "saved").Bool())
	sts.Equal("01/01/2024 10:00:00", gjson.Get(body, "payment.timestamp").String())

	values := url.Values{}
	values.Set("firstName", "Juan")
	values.Set("lastName", "Perez")
	values.Set("company", "Otra Empresa")
	values.Set("amount", "20,25")
	rec = sts.do(http.MethodPost, "/api/datasets/main/payments", "application/x-www-form-urlencoded", values.Encode())
	sts.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())

	payments := sts.payments("main")
	sts.Require().Len(payments, 2)

	sts.Equal("Ana", payments[0].Get("firstName").String())
	sts.Equal("Gomez", payments[0].Get("lastName").String())
	sts.Equal("Empresa A", payments[0].Get("company").String())
	sts.Equal(150.5, payments[0].Get("amount").Float())
	sts.Equal("Card", payments[0].Get("paymentMethod").String())
	sts.Equal("01/01/2024 10:00:00", payments[0].Get("timestamp").String())

	sts.Equal("Juan", payments[1].Get("firstName").String())
	sts.Equal(20.25, payments[1].Get("amount").Float())
	sts.Equal("Card", payments[1].Get("paymentMethod").String(), "payment method defaults to Card")
}

func (sts *serverTestSuite) TestAppendInvalid() {
	rec := sts.appendJSON("main", `{"firstName":"Ana","lastName":"","company":"Empresa A","amount":0}`)
	sts.Require().Equal(http.StatusUnprocessableEntity, rec.Code)

	body := rec.Body.String()
	sts.Equal(form.Message, gjson.Get(body, "error").String())
	sts.True(gjson.Get(body, "problems.lastName").Exists())
	sts.True(gjson.Get(body, "problems.amount").Exists())

	_, ok, err := sts.db.Get("paysheet:main")
	sts.Require().NoError(err)
	sts.False(ok, "rejected submissions must not create a dataset")
}

func (sts *serverTestSuite) TestAppendMalformedJSON() {
	rec := sts.appendJSON("main", `{"firstName":`)
	sts.Equal(http.StatusBadRequest, rec.Code)
}

func (sts *serverTestSuite) TestAppendWithDownload() {
	rec := sts.do(http.MethodPost, "/api/datasets/main/payments?download=1", "application/json", anaJSON)
	sts.Require().Equal(http.StatusOK, rec.Code)
	sts.Equal(export.ContentType, rec.Header().Get("Content-Type"))
	sts.Equal(`attachment; filename="payments.xlsx"`, rec.Header().Get("Content-Disposition"))

	sheet, err := xlsx.Decode(rec.Body.Bytes(), "Payments")
	sts.Require().NoError(err)
	sts.Equal(2, sheet.Len())
}

func (sts *serverTestSuite) TestAppendOnCorruptData() {
	sts.Require().NoError(sts.db.Set("paysheet:main", "bm90IGEgd29ya2Jvb2s="))

	rec := sts.appendJSON("main", anaJSON)
	sts.Equal(http.StatusInternalServerError, rec.Code)
	sts.Equal(MsgSaveFailed, gjson.Get(rec.Body.String(), "error").String())

	v, _, err := sts.db.Get("paysheet:main")
	sts.Require().NoError(err)
	sts.Equal("bm90IGEgd29ya2Jvb2s=", v)
	sts.Empty(sts.payments("main"))
}

func (sts *serverTestSuite) TestExport() {
	rec := sts.do(http.MethodGet, "/api/datasets/main/export", "", "")
	sts.Require().Equal(http.StatusNotFound, rec.Code)
	sts.Equal(MsgNoData, gjson.Get(rec.Body.String(), "error").String())

	sts.Require().Equal(http.StatusCreated, sts.appendJSON("main", anaJSON).Code)

	rec = sts.do(http.MethodGet, "/api/datasets/main/export", "", "")
	sts.Require().Equal(http.StatusOK, rec.Code)
	sts.Equal(export.ContentType, rec.Header().Get("Content-Type"))

	etag := rec.Header().Get("ETag")
	sts.Equal(export.ETag(rec.Body.Bytes()), etag)

	sheet, err := xlsx.Decode(rec.Body.Bytes(), "Payments")
	sts.Require().NoError(err)
	sts.Equal(2, sheet.Len())

	sts.Require().Len(sts.copies.blobs, 1)
	sts.Equal(rec.Body.Bytes(), sts.copies.blobs[0])

	rec = sts.do(http.MethodGet, "/api/datasets/main/export", "", "", "If-None-Match", etag)
	sts.Equal(http.StatusNotModified, rec.Code)
	sts.Len(sts.copies.blobs, 1)
}

func (sts *serverTestSuite) TestExportServesStoredBytes() {
	sts.Require().Equal(http.StatusCreated, sts.appendJSON("main", anaJSON).Code)

	stored, ok, err := sts.db.Get("paysheet:main")
	sts.Require().NoError(err)
	sts.Require().True(ok)

	for i := 1; i <= 2; i++ {
		rec := sts.do(http.MethodGet, "/api/datasets/main/export", "", "")
		sts.Require().Equal(http.StatusOK, rec.Code)
		sts.Equal(stored, transcode.ToText(rec.Body.Bytes()), "download is the stored workbook as is")
		sts.Require().Len(sts.copies.blobs, i, "one kept copy per served download")
		sts.Equal(rec.Body.Bytes(), sts.copies.blobs[i-1])
	}

	sts.srv = NewServer(sts.db, Options{
		KeyPrefix: "paysheet:",
		FileName:  "payments.xlsx",
		SheetName: "Payments",
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	rec := sts.do(http.MethodGet, "/api/datasets/main/export", "", "")
	sts.Equal(http.StatusOK, rec.Code, "no downloads directory still serves the file")
	sts.Len(sts.copies.blobs, 2)
}

func (sts *serverTestSuite) TestClear() {
	sts.Require().Equal(http.StatusCreated, sts.appendJSON("main", anaJSON).Code)
	sts.Require().Len(sts.payments("main"), 1)

	rec := sts.do(http.MethodPost, "/api/datasets/main/clear", "", "")
	sts.Require().Equal(http.StatusOK, rec.Code)
	sts.Empty(sts.payments("main"))

	rec = sts.do(http.MethodGet, "/api/datasets/main/export", "", "")
	sts.Equal(http.StatusOK, rec.Code, "a cleared dataset still exports its header")
}

func (sts *serverTestSuite) TestDatasets() {
	sts.Require().NoError(sts.db.Set("unrelated", "x"))
	sts.Require().Equal(http.StatusCreated, sts.appendJSON("second", anaJSON).Code)
	sts.Require().Equal(http.StatusCreated, sts.appendJSON("first", anaJSON).Code)

	rec := sts.do(http.MethodGet, "/api/datasets", "", "")
	sts.Require().Equal(http.StatusOK, rec.Code)
	sts.Equal(`["first","second"]`, gjson.Get(rec.Body.String(), "datasets").Raw)

	sts.Len(sts.payments("first"), 1)
	sts.Len(sts.payments("second"), 1)
}

func (sts *serverTestSuite) TestInvalidDatasetName() {
	rec := sts.do(http.MethodGet, "/api/datasets/bad.name/payments", "", "")
	sts.Equal(http.StatusBadRequest, rec.Code)
}

func (sts *serverTestSuite) TestHeadless() {
	sts.srv = NewServer(sts.db, sts.options(true))

	rec := sts.appendJSON("main", anaJSON)
	sts.Require().Equal(http.StatusAccepted, rec.Code)
	sts.False(gjson.Get(rec.Body.String(), "saved").Bool())

	sts.Empty(sts.payments("main"))
	sts.Equal(http.StatusNotFound, sts.do(http.MethodGet, "/api/datasets/main/export", "", "").Code)
	sts.Equal(0, sts.db.Count())

	rec = sts.do(http.MethodGet, "/api/datasets", "", "")
	sts.Equal(`[]`, gjson.Get(rec.Body.String(), "datasets").Raw)
}
