package application

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	testutils "github.com/diwise/service-chassis/pkg/test/http"
	"github.com/diwise/service-chassis/pkg/test/http/expects"
	"github.com/diwise/service-chassis/pkg/test/http/response"
	"github.com/matryer/is"
)

var Expects = testutils.Expects
var Returns = testutils.Returns
var method = expects.RequestMethod

func TestThatGetSensorsByFuseIDsFailsIfResponseCodeIsNotOK(t *testing.T) {
	is := is.New(t)

	s := testutils.NewMockServiceThat(
		Expects(
			is,
			method(http.MethodGet),
		),
		Returns(
			response.Code(http.StatusNotFound),
			response.Body([]byte("")),
		),
	)

	mockApp := newMockApp(t, s.URL())

	sensors, err := mockApp.GetSensorsByFuseIDs(context.Background(), []string{"145799809528704"})
	is.True(errors.Is(err, ErrFetchSensors))             // expected a fetch error
	is.True(strings.Contains(err.Error(), "Not Found")) // error should carry the status text
	is.True(sensors == nil)
}

func TestThatGetSensorsByFuseIDsReturnsEmptyListOnEmptyBody(t *testing.T) {
	is := is.New(t)

	s := testutils.NewMockServiceThat(
		Expects(
			is,
			method(http.MethodGet),
		),
		Returns(
			response.Code(http.StatusOK),
			response.Body([]byte("")),
		),
	)

	mockApp := newMockApp(t, s.URL())

	sensors, err := mockApp.GetSensorsByFuseIDs(context.Background(), []string{"145799809528704"})
	is.NoErr(err)
	is.True(sensors != nil)
	is.Equal(len(sensors), 0)
}

func TestThatGetSensorsByFuseIDsReturnsEmptyListOnNullOrEmptyArray(t *testing.T) {
	is := is.New(t)

	for _, body := range []string{"null", "[]", " [ ] \n"} {
		s := testutils.NewMockServiceThat(
			Expects(
				is,
				method(http.MethodGet),
			),
			Returns(
				response.Code(http.StatusOK),
				response.Body([]byte(body)),
			),
		)

		sensors, err := newMockApp(t, s.URL()).GetSensorsByFuseIDs(context.Background(), []string{"1"})
		is.NoErr(err)
		is.Equal(len(sensors), 0) // body should yield an empty list
	}
}

func TestThatGetSensorsByFuseIDsFailsIfReturnedDataIsIncorrect(t *testing.T) {
	is := is.New(t)

	s := testutils.NewMockServiceThat(
		Expects(
			is,
			method(http.MethodGet),
		),
		Returns(
			response.Code(http.StatusOK),
			response.Body([]byte(sensorsBadResponse)),
		),
	)

	mockApp := newMockApp(t, s.URL())

	sensors, err := mockApp.GetSensorsByFuseIDs(context.Background(), []string{"145799809528704"})
	is.True(err != nil)
	is.True(sensors == nil)
}

func TestThatGetSensorsByFuseIDsFailsWithoutFuseIDs(t *testing.T) {
	is := is.New(t)

	ts, rec := newRecordingServer(http.StatusOK, "[]")
	defer ts.Close()

	_, err := newMockApp(t, ts.URL).GetSensorsByFuseIDs(context.Background(), []string{})
	is.True(err != nil)
	is.Equal(rec.count(), 0) // no request should have been made
}

func TestThatGetSensorsByFuseIDsParsesTimestamps(t *testing.T) {
	is := is.New(t)

	s := testutils.NewMockServiceThat(
		Expects(
			is,
			method(http.MethodGet),
		),
		Returns(
			response.Code(http.StatusOK),
			response.Body([]byte(sensorsResponse)),
		),
	)

	mockApp := newMockApp(t, s.URL())

	sensors, err := mockApp.GetSensorsByFuseIDs(context.Background(), []string{"145799809528704", "39620398887400"})
	is.NoErr(err)
	is.Equal(len(sensors), 2)

	createdAt, _ := time.Parse(time.RFC3339Nano, "2025-06-01T10:15:30.123456Z")
	lastSeen, _ := time.Parse(time.RFC3339Nano, "2025-09-12T08:00:00-03:00")

	is.True(sensors[0].CreatedAt.Equal(createdAt)) // created_at should equal the parsed string
	is.True(sensors[0].LastSeen.Equal(lastSeen))   // last_seen should equal the parsed string
	is.Equal(sensors[0].FuseID, "145799809528704")
	is.Equal(sensors[0].Name, "Greenhouse")
	is.Equal(string(sensors[0].Type), "hidroponic-manager")
	is.Equal(sensors[0].WifiStrength, -61)
	is.Equal(sensors[0].BatteryPercent, 87)
	is.Equal(sensors[1].Location, "Water tank")
}

func TestThatGetSensorsByFuseIDsFailsOnInvalidTimestamp(t *testing.T) {
	is := is.New(t)

	s := testutils.NewMockServiceThat(
		Expects(
			is,
			method(http.MethodGet),
		),
		Returns(
			response.Code(http.StatusOK),
			response.Body([]byte(`[{"id":1,"fuse_id":"1","created_at":"yesterday","last_seen":"2025-09-12T08:00:00Z"}]`)),
		),
	)

	_, err := newMockApp(t, s.URL()).GetSensorsByFuseIDs(context.Background(), []string{"1"})
	is.True(err != nil)
}

func TestThatGetSensorsByFuseIDsSendsASingleBatchedRequest(t *testing.T) {
	is := is.New(t)

	ts, rec := newRecordingServer(http.StatusOK, "[]")
	defer ts.Close()

	_, err := newMockApp(t, ts.URL).GetSensorsByFuseIDs(context.Background(), []string{"145799809528704", "39620398887400"})
	is.NoErr(err)

	is.Equal(rec.count(), 1) // expected exactly one request

	u := rec.last()
	is.Equal(u.Path, "/sensors")
	is.Equal(u.Query().Get("ids"), "145799809528704,39620398887400")
}

func TestThatGetSensorDataReturnsNotFoundIfResponseCodeIsNotOK(t *testing.T) {
	is := is.New(t)

	s := testutils.NewMockServiceThat(
		Expects(
			is,
			method(http.MethodGet),
		),
		Returns(
			response.Code(http.StatusInternalServerError),
			response.Body([]byte("")),
		),
	)

	mockApp := newMockApp(t, s.URL())

	result, err := mockApp.GetSensorData(context.Background(), "145799809528704", time.Now().Add(-time.Hour), time.Now())
	is.NoErr(err) // a failed upstream request should not be an error
	is.True(!result.Found())

	b, err := json.Marshal(result)
	is.NoErr(err)
	is.Equal(string(b), `{"error":"Sensor data not found"}`)
}

func TestThatGetSensorDataSendsExpectedQuery(t *testing.T) {
	is := is.New(t)

	ts, rec := newRecordingServer(http.StatusOK, "[]")
	defer ts.Close()

	from := time.Date(2025, 9, 1, 12, 0, 0, 0, time.FixedZone("BRT", -3*60*60))
	to := time.Date(2025, 9, 2, 0, 30, 15, 250*int(time.Millisecond), time.UTC)

	_, err := newMockApp(t, ts.URL).GetSensorData(context.Background(), "39620398887400", from, to)
	is.NoErr(err)

	is.Equal(rec.count(), 1) // expected exactly one request

	u := rec.last()
	query := u.Query()
	is.Equal(u.Path, "/sensor/data")
	is.Equal(query.Get("fuse_id"), "39620398887400")
	is.Equal(query.Get("start"), "2025-09-01T15:00:00.000Z")
	is.Equal(query.Get("end"), "2025-09-02T00:30:15.250Z")
	is.Equal(query.Get("interval_ms"), "300000")
}

func TestThatGetSensorDataReturnsBodyUnmodified(t *testing.T) {
	is := is.New(t)

	s := testutils.NewMockServiceThat(
		Expects(
			is,
			method(http.MethodGet),
		),
		Returns(
			response.Code(http.StatusOK),
			response.Body([]byte(waterLevelResponse)),
		),
	)

	result, err := newMockApp(t, s.URL()).GetSensorData(context.Background(), "39620398887400", time.Now().Add(-time.Hour), time.Now())
	is.NoErr(err)
	is.True(result.Found())
	is.Equal(string(result.Readings), waterLevelResponse)
}

func TestThatGetSensorDataFailsOnInvalidJSON(t *testing.T) {
	is := is.New(t)

	s := testutils.NewMockServiceThat(
		Expects(
			is,
			method(http.MethodGet),
		),
		Returns(
			response.Code(http.StatusOK),
			response.Body([]byte("[{")),
		),
	)

	_, err := newMockApp(t, s.URL()).GetSensorData(context.Background(), "39620398887400", time.Now().Add(-time.Hour), time.Now())
	is.True(err != nil)
}

func TestParseTimestampAcceptsIsoVariants(t *testing.T) {
	is := is.New(t)

	for _, value := range []string{
		"2025-09-12T08:00:00Z",
		"2025-09-12T08:00:00.5+02:00",
		"2025-09-12T08:00:00",
		"2025-09-12 08:00:00+00:00",
		"2025-09-12",
	} {
		_, err := parseTimestamp(value)
		is.NoErr(err) // timestamp should be accepted
	}

	_, err := parseTimestamp("")
	is.True(err != nil)
}

type requestRecorder struct {
	mu   sync.Mutex
	urls []*url.URL
}

func (rr *requestRecorder) count() int {
	rr.mu.Lock()
	defer rr.mu.Unlock()
	return len(rr.urls)
}

func (rr *requestRecorder) last() *url.URL {
	rr.mu.Lock()
	defer rr.mu.Unlock()
	return rr.urls[len(rr.urls)-1]
}

func newRecordingServer(code int, body string) (*httptest.Server, *requestRecorder) {
	rec := &requestRecorder{}

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.mu.Lock()
		u := *r.URL
		rec.urls = append(rec.urls, &u)
		rec.mu.Unlock()

		w.WriteHeader(code)
		w.Write([]byte(body))
	}))

	return ts, rec
}

func newMockApp(t *testing.T, serverURL string) *sensorService {
	app := New(serverURL)
	mockApp := app.(*sensorService)

	return mockApp
}

const sensorsBadResponse string = `[
	{
	  "id": 1,
	  "fuse_id": "145799809528704",
	  "name": "Greenhouse"
	}
	{
	  "id": 2,
	  "fuse_id": "39620398887400"
	}
  ]`

const sensorsResponse string = `[
  {
    "id": 1,
    "fuse_id": "145799809528704",
    "name": "Greenhouse",
    "type": "hidroponic-manager",
    "location": "Backyard",
    "wifi_strength": -61,
    "battery_percent": 87,
    "description": "Lettuce tower",
    "created_at": "2025-06-01T10:15:30.123456Z",
    "last_seen": "2025-09-12T08:00:00-03:00"
  },
  {
    "id": 2,
    "fuse_id": "39620398887400",
    "name": "Tank",
    "type": "water-level-meter",
    "location": "Water tank",
    "wifi_strength": -70,
    "battery_percent": 100,
    "description": "",
    "created_at": "2025-06-02T00:00:00Z",
    "last_seen": "2025-09-12T07:55:00Z"
  }
]`

const waterLevelResponse string = `[{"average_water_level_cm":42.5},{"average_water_level_cm":0},{"average_water_level_cm":41.75}]`
