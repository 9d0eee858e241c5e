package errno

// Errno defines the error code logic
type Errno struct {
	Code    int
	Message string
}

func (e Errno) Error() string {
	return e.Message
}

// Decode tries to convert an error to Errno
func Decode(err error) (int, string) {
	if err == nil {
		return OK.Code, OK.Message
	}

	switch typed := err.(type) {
	case *Errno:
		return typed.Code, typed.Message
	case Errno:
		return typed.Code, typed.Message
	default:
		return InternalServerError.Code, err.Error()
	}
}

// Common Errors
var (
	OK                  = Errno{Code: 0, Message: "Success"}
	InternalServerError = Errno{Code: 10001, Message: "Internal server error"}
	ErrBind             = Errno{Code: 10002, Message: "Error occurred while binding the request body to the struct"}
	ErrTokenInvalid     = Errno{Code: 10003, Message: "Token invalid"}
	ErrDatabase         = Errno{Code: 10004, Message: "Database error"}
)

// Wallet / Allocator Errors (202xx)
var (
	ErrWalletNotInitialized = Errno{Code: 20201, Message: "Wallet not initialized"}
	ErrUnsupportedChain     = Errno{Code: 20202, Message: "Unsupported chain"}
	ErrIdempotencyKeyEmpty  = Errno{Code: 20203, Message: "Idempotency key is required"}
	ErrIdempotencyPending   = Errno{Code: 20204, Message: "A request with this idempotency key is still in progress"}
	ErrIdempotencyConflict  = Errno{Code: 20205, Message: "Idempotency key was used with a different request"}
	ErrAllocationFailed     = Errno{Code: 20206, Message: "Deposit address allocation failed"}
	ErrAddressNotFound      = Errno{Code: 20207, Message: "Address not found"}
	ErrUserIDOutOfRange     = Errno{Code: 20208, Message: "User id exceeds hardened derivation range"}
)

// Master Key / Vault Errors (203xx)
var (
	ErrMasterKeyNotFound        = Errno{Code: 20301, Message: "Master key not found"}
	ErrMasterKeyInactive        = Errno{Code: 20302, Message: "Master key is not active"}
	ErrVaultSecretMissing       = Errno{Code: 20303, Message: "Vault secret is not configured"}
	ErrDecryptFailed            = Errno{Code: 20304, Message: "Decryption failed"}
	ErrMnemonicInvalid          = Errno{Code: 20305, Message: "Mnemonic failed checksum validation"}
	ErrVerifyPositionOutOfRange = Errno{Code: 20306, Message: "Verification position out of range"}
)

// Scanner Errors (204xx)
var (
	ErrProviderUnavailable = Errno{Code: 20401, Message: "Chain data provider unavailable"}
	ErrScannerNotFound     = Errno{Code: 20402, Message: "No scanner registered for chain"}
)
