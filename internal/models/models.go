package models

// BMIRequest is the body accepted by the BMI service.
// Fields are pointers so an absent field can be told apart from zero.
type BMIRequest struct {
	Weight *float64 `json:"weight" validate:"required"`
	Height *float64 `json:"height" validate:"required"`
}

// SolarFeatures is the named form of a solar-irradiance request.
// The order of fields here is the model's input order.
type SolarFeatures struct {
	Month          *float64 `json:"month" validate:"required"`
	Day            *float64 `json:"day" validate:"required"`
	DailyTemp      *float64 `json:"daily_temp" validate:"required"`
	DailyPrecip    *float64 `json:"daily_precip" validate:"required"`
	DailyHumidity  *float64 `json:"daily_humidity" validate:"required"`
	DailyPressure  *float64 `json:"daily_pressure" validate:"required"`
	DailyWindDir   *float64 `json:"daily_windDir" validate:"required"`
	DailyWindSpeed *float64 `json:"daily_windSpeed" validate:"required"`
	DailyDNI       *float64 `json:"daily_DNI" validate:"required"`
	DailyDHI       *float64 `json:"daily_DHI" validate:"required"`
}

// SolarResponse contains the predicted irradiation
type SolarResponse struct {
	Irradiation float64 `json:"solar irradiation"`
}

// ErrorResponse is written for every failed request
type ErrorResponse struct {
	Error string `json:"error"`
}

// ModelStatus describes the artifact currently held by the model store
type ModelStatus struct {
	Path     string `json:"path"`
	Mode     string `json:"mode"`
	Loaded   bool   `json:"loaded"`
	Format   string `json:"format,omitempty"`
	Trees    int    `json:"trees,omitempty"`
	Features int    `json:"features,omitempty"`
	LoadedAt string `json:"loaded_at,omitempty"`
	Error    string `json:"error,omitempty"`
}

// InfoResponse is returned by /api/info
type InfoResponse struct {
	Version string       `json:"version"`
	Service string       `json:"service"`
	Model   *ModelStatus `json:"model,omitempty"`
}
