package config

const (
	defaultDataDir            = "~/.local/share/firewatch"
	defaultLogDir             = "~/.local/share/firewatch/logs"
	defaultFIRMSBaseURL       = "https://firms.modaps.eosdis.nasa.gov/api/area/csv"
	defaultFIRMSTimeout       = 30
	defaultScanMinLat         = 6.0
	defaultScanMinLon         = 68.0
	defaultScanMaxLat         = 38.0
	defaultScanMaxLon         = 98.0
	defaultScanLookbackDays   = 1
	defaultVerifierBaseURL    = "https://openrouter.ai/api/v1/chat/completions"
	defaultVerifierModel      = "meta-llama/llama-3-70b-instruct"
	defaultVerifierReferer    = "https://github.com/firewatch/firewatch"
	defaultVerifierTitle      = "Firewatch Verifier"
	defaultVerifierTimeout    = 30
	defaultConfidenceFloor    = 0.6
	defaultOverpassBaseURL    = "https://overpass-api.de/api/interpreter"
	defaultOverpassRadius     = 500
	defaultOverpassTimeout    = 10
	defaultOverpassMinPower   = 20.0
	defaultSpatialKm          = 0.5
	defaultTemporalHours      = 4.0
	defaultEmissionProfile    = "default"
	defaultObservationSeconds = 960
	defaultVerifyWorkers      = 4
	defaultRetryMaxAttempts   = 5
	defaultRetryBaseSeconds   = 1
	defaultRetryMaxSeconds    = 10
	defaultStageRetryBudget   = 3
	defaultFetchTimeoutHours  = 1
	defaultTelegramTimeout    = 10
	defaultMinAlertPowerMW    = 50.0
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

func defaultProducts() []string {
	return []string{"VIIRS_SNPP_NRT", "VIIRS_NOAA20_NRT", "MODIS_NRT"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		FIRMS: FIRMS{
			BaseURL:        defaultFIRMSBaseURL,
			Products:       defaultProducts(),
			TimeoutSeconds: defaultFIRMSTimeout,
		},
		Scan: Scan{
			MinLat:       defaultScanMinLat,
			MinLon:       defaultScanMinLon,
			MaxLat:       defaultScanMaxLat,
			MaxLon:       defaultScanMaxLon,
			LookbackDays: defaultScanLookbackDays,
		},
		Verifier: Verifier{
			BaseURL:         defaultVerifierBaseURL,
			Model:           defaultVerifierModel,
			Referer:         defaultVerifierReferer,
			Title:           defaultVerifierTitle,
			TimeoutSeconds:  defaultVerifierTimeout,
			ConfidenceFloor: defaultConfidenceFloor,
		},
		Overpass: Overpass{
			Enabled:        true,
			BaseURL:        defaultOverpassBaseURL,
			RadiusMeters:   defaultOverpassRadius,
			TimeoutSeconds: defaultOverpassTimeout,
			MinPowerMW:     defaultOverpassMinPower,
		},
		Clustering: Clustering{
			SpatialKm:     defaultSpatialKm,
			TemporalHours: defaultTemporalHours,
		},
		Emissions: Emissions{
			Profile:            defaultEmissionProfile,
			ObservationSeconds: defaultObservationSeconds,
		},
		Workflow: Workflow{
			VerifyWorkers:     defaultVerifyWorkers,
			RetryMaxAttempts:  defaultRetryMaxAttempts,
			RetryBaseSeconds:  defaultRetryBaseSeconds,
			RetryMaxSeconds:   defaultRetryMaxSeconds,
			StageRetryBudget:  defaultStageRetryBudget,
			FetchTimeoutHours: defaultFetchTimeoutHours,
		},
		Telegram: Telegram{
			RequestTimeout:  defaultTelegramTimeout,
			MinAlertPowerMW: defaultMinAlertPowerMW,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
