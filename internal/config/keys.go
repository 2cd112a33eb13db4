package config

// KeyStruct names the shared keys used between the detail site and the
// catalog service.
type KeyStruct struct {
	// DetailLoadLogQueue is the redis list load records are pushed onto.
	DetailLoadLogQueue string
	// ViewerCookie holds the per-browser viewer id.
	ViewerCookie string
}

var Keys = &KeyStruct{
	DetailLoadLogQueue: "detail_load_log_queue",
	ViewerCookie:       "viewer_id",
}
