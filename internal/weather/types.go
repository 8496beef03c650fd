// In file: internal/weather/types.go
package weather

// Report is the adapter's answer for one query. Failures are reported through
// Success and Message instead of Go errors.
type Report struct {
	Success        bool   `json:"success"`
	Message        string `json:"message"`
	Data           Data   `json:"data"`
	RawAPIResponse any    `json:"raw_api_response"`
}

// Data is the normalized weather payload.
type Data struct {
	City          string `json:"city,omitempty"`
	Date          string `json:"date,omitempty"`
	Weather       string `json:"weather"`
	Temperature   string `json:"temperature"`
	WindDirection string `json:"wind_direction,omitempty"`
	WindPower     string `json:"wind_power,omitempty"`
	Humidity      string `json:"humidity,omitempty"`
	ReportTime    string `json:"report_time,omitempty"`
	IsForecast    bool   `json:"is_forecast,omitempty"`
	IsMock        bool   `json:"is_mock,omitempty"`
}

const unknownValue = "未知"

func errorReport(msg string) Report {
	return Report{
		Success: false,
		Message: msg,
		Data:    Data{Weather: unknownValue, Temperature: unknownValue},
	}
}

// amapWeatherResponse covers both extensions=base (lives) and
// extensions=all (forecasts) replies of /v3/weather/weatherInfo.
type amapWeatherResponse struct {
	Status    string         `json:"status"`
	Info      string         `json:"info"`
	Lives     []amapLive     `json:"lives,omitempty"`
	Forecasts []amapForecast `json:"forecasts,omitempty"`
}

type amapLive struct {
	Province      string `json:"province"`
	City          string `json:"city"`
	Adcode        string `json:"adcode"`
	Weather       string `json:"weather"`
	Temperature   string `json:"temperature"`
	WindDirection string `json:"winddirection"`
	WindPower     string `json:"windpower"`
	Humidity      string `json:"humidity"`
	ReportTime    string `json:"reporttime"`
}

type amapForecast struct {
	City       string     `json:"city"`
	Adcode     string     `json:"adcode"`
	Province   string     `json:"province"`
	ReportTime string     `json:"reporttime"`
	Casts      []amapCast `json:"casts"`
}

type amapCast struct {
	Date         string `json:"date"`
	Week         string `json:"week,omitempty"`
	DayWeather   string `json:"dayweather"`
	NightWeather string `json:"nightweather"`
	DayTemp      string `json:"daytemp"`
	NightTemp    string `json:"nighttemp"`
	DayWind      string `json:"daywind"`
	NightWind    string `json:"nightwind"`
	DayPower     string `json:"daypower"`
	NightPower   string `json:"nightpower"`
}

type amapGeocodeResponse struct {
	Status   string `json:"status"`
	Info     string `json:"info"`
	Geocodes []struct {
		Adcode string `json:"adcode"`
	} `json:"geocodes"`
}

// defaultCityCodes seeds the adcode cache with the most queried cities.
var defaultCityCodes = map[string]string{
	"北京": "110000",
	"上海": "310000",
	"广州": "440100",
	"深圳": "440300",
	"杭州": "330100",
	"南京": "320100",
	"武汉": "420100",
	"西安": "610100",
	"成都": "510100",
	"重庆": "500000",
	"天津": "120000",
	"长沙": "430100",
	"苏州": "320500",
	"厦门": "350200",
}
