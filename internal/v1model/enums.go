package v1model

// HashAlgorithm maps a legacy field-list-calculation algorithm to the
// HashAlgorithm member of the model. Unknown algorithms are not mapped.
func HashAlgorithm(legacy string) (string, bool) {
	switch legacy {
	case "crc16", "crc32", "crc16_custom", "crc32_custom", "identity", "random", "csum16", "xor16":
		return legacy, true
	case "crc_16":
		return "crc16", true
	case "crc_32":
		return "crc32", true
	default:
		return "", false
	}
}

// CounterType maps a legacy counter kind to a CounterType member.
func CounterType(kind string) (string, bool) {
	switch kind {
	case "packets", "bytes", "packets_and_bytes":
		return kind, true
	default:
		return "", false
	}
}

// MeterType maps a legacy meter kind to a MeterType member.
func MeterType(kind string) (string, bool) {
	switch kind {
	case "packets", "bytes":
		return kind, true
	default:
		return "", false
	}
}

// Enum type names of the model.
const (
	EnumHashAlgorithm = "HashAlgorithm"
	EnumCounterType   = "CounterType"
	EnumMeterType     = "MeterType"
	EnumCloneType     = "CloneType"
)

// Clone session kinds.
const (
	CloneI2E = "I2E"
	CloneE2E = "E2E"
)

// Extern object types of the model.
const (
	ExternCounter        = "counter"
	ExternDirectCounter  = "direct_counter"
	ExternMeter          = "meter"
	ExternDirectMeter    = "direct_meter"
	ExternRegister       = "register"
	ExternActionProfile  = "action_profile"
	ExternActionSelector = "action_selector"
)

// Free functions of the model.
const (
	FuncMarkToDrop        = "mark_to_drop"
	FuncHash              = "hash"
	FuncRandom            = "random"
	FuncDigest            = "digest"
	FuncClone             = "clone"
	FuncClone3            = "clone3"
	FuncResubmit          = "resubmit"
	FuncRecirculate       = "recirculate"
	FuncTruncate          = "truncate"
	FuncVerifyChecksum    = "verify_checksum"
	FuncUpdateChecksum    = "update_checksum"
	FuncVerifyWithPayload = "verify_checksum_with_payload"
	FuncUpdateWithPayload = "update_checksum_with_payload"
)
