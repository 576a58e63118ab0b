package domain

const (
	// Data entry constants
	MAX_DATA_ENTRY_BYTES = 64
	STORAGE_KEY_PREFIX   = "nft_"
	MINT_MARKER_KEY      = "metadata_cid"
	SLOT_WIDTH           = 10

	// Gateway constants
	DEFAULT_IPFS_GATEWAY     = "https://ipfs.io/ipfs"
	DEFAULT_PINATA_GATEWAY   = "https://gateway.pinata.cloud/ipfs"
	DEFAULT_DWEB_GATEWAY     = "https://dweb.link/ipfs"
	DEFAULT_HORIZON_URL      = "https://horizon-testnet.stellar.org"
	DEFAULT_HISTORY_LIMIT    = 200
	MAX_HORIZON_PAGE_LIMIT   = 200
	DEFAULT_TX_TIMEOUT_SECS  = 180
	DEFAULT_MAX_UPLOAD_BYTES = 10 << 20
)
