package domain

// ConfigEntry is a runtime bot setting stored in the config table.
// Keys are at most 16 characters, values at most 64. The core treats the
// table as a synchronous read-only map.
type ConfigEntry struct {
	Key   string `json:"key" dynamodbav:"key"`
	Value string `json:"value" dynamodbav:"value"`
}

// Config keys the bot reads at startup. Required keys fail fatally when
// absent; the rest are handled absences.
const (
	ConfKeyPrefix       = "botPrefix"       // required
	ConfKeyDebugPrefix  = "botDebugPrefix"  // used when debug mode is on
	ConfKeyFromName     = "mailFromName"    // required
	ConfKeyFromAddr     = "mailFromAddr"    // required
	ConfKeyTemplateKey  = "emailTemplate"   // required, S3 object key
	ConfKeyStaffRoles   = "staffRoles"      // optional, space-separated role names
)
