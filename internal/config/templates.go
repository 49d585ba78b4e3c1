package config

import (
	"fmt"
	"os"
)

func WriteTemplate(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(Template), 0o600)
}

const Template = `# framectl configuration
magic = 0xEDCE1001
version = 1
max_auth_bytes = 16384
max_payload_bytes = 8388608
max_fragment_payload = 65536
max_fragments = 256
read_chunk_size = 4096
metrics_addr = ""
log_level = "info"
strict_schema = false
# hex auth block required on every decoded message; empty disables the check
auth_token = ""

[[schema]]
message_type = 1
fields = [
  { id = 1, type = "string" },
  { id = 100, type = "string" },
]
`
