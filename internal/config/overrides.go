package config

// Overrides carries command-line values that take priority over the file.
// Zero values leave the loaded setting untouched, except Threshold, where
// nil means unset so an explicit 0 can request chunking of every model.
type Overrides struct {
	Debug       bool
	LogFile     string
	Threshold   *int
	MaxPerChunk int
	ScaleFactor float64
	MapsDir     string
	AssetsDir   string
	BoundsFile  string
}

// apply applies CLI overrides to the config.
func (o Overrides) apply(cfg *Config) {
	if o.Debug {
		cfg.Logging.Level = "debug"
	}
	if o.LogFile != "" {
		cfg.Logging.LogFile = o.LogFile
	}
	if o.Threshold != nil {
		cfg.Chunking.Threshold = *o.Threshold
	}
	if o.MaxPerChunk > 0 {
		cfg.Chunking.MaxPerChunk = o.MaxPerChunk
	}
	if o.ScaleFactor > 0 {
		cfg.Registration.ScaleFactor = o.ScaleFactor
	}
	if o.MapsDir != "" {
		cfg.Paths.MapsDir = o.MapsDir
	}
	if o.AssetsDir != "" {
		cfg.Paths.AssetsDir = o.AssetsDir
	}
	if o.BoundsFile != "" {
		cfg.Paths.BoundsFile = o.BoundsFile
	}
}
