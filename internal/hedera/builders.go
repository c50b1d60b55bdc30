package hedera

// Transaction builders. All parameters must be set before FreezeWith; freezing
// returns a FrozenTransaction whose parameters can no longer change, which is
// the only value that can be signed or executed.

// TransferTransaction assembles a multi-party transfer of native currency,
// fungible tokens and NFT serials.
type TransferTransaction struct {
	op     TransferOp
	memo   string
	maxFee int64
}

// NewTransferTransaction starts an empty transfer.
func NewTransferTransaction() *TransferTransaction { return &TransferTransaction{} }

// AddHbarTransfer appends a signed native-currency balance change.
func (t *TransferTransaction) AddHbarTransfer(account EntityID, amount int64) *TransferTransaction {
	t.op.Hbar = append(t.op.Hbar, AccountAmount{Account: account, Amount: amount})
	return t
}

// AddTokenTransfer appends a signed fungible-token balance change.
func (t *TransferTransaction) AddTokenTransfer(token, account EntityID, amount int64) *TransferTransaction {
	t.op.Tokens = append(t.op.Tokens, TokenTransfer{Token: token, Account: account, Amount: amount})
	return t
}

// AddNftTransfer appends a single-serial NFT movement.
func (t *TransferTransaction) AddNftTransfer(token EntityID, serial int64, sender, receiver EntityID) *TransferTransaction {
	t.op.Nfts = append(t.op.Nfts, NftTransfer{Token: token, Serial: serial, Sender: sender, Receiver: receiver})
	return t
}

// SetMemo attaches a memo.
func (t *TransferTransaction) SetMemo(memo string) *TransferTransaction {
	t.memo = memo
	return t
}

// SetMaxFee caps the network fee.
func (t *TransferTransaction) SetMaxFee(fee int64) *TransferTransaction {
	t.maxFee = fee
	return t
}

// FreezeWith binds the transfer to the client's payer and node.
func (t *TransferTransaction) FreezeWith(c Client) (*FrozenTransaction, error) {
	return freeze(t.op, t.memo, t.maxFee, c.Payer(), c.Node())
}

// AccountCreateTransaction creates a new ledger account.
type AccountCreateTransaction struct {
	op     CryptoCreateOp
	memo   string
	maxFee int64
}

func NewAccountCreateTransaction() *AccountCreateTransaction { return &AccountCreateTransaction{} }

// SetKey sets the key that will control the new account.
func (t *AccountCreateTransaction) SetKey(key PublicKey) *AccountCreateTransaction {
	t.op.Key = key.Spec()
	return t
}

// SetInitialBalance funds the new account from the payer.
func (t *AccountCreateTransaction) SetInitialBalance(amount int64) *AccountCreateTransaction {
	t.op.InitialBalance = amount
	return t
}

func (t *AccountCreateTransaction) SetMaxFee(fee int64) *AccountCreateTransaction {
	t.maxFee = fee
	return t
}

func (t *AccountCreateTransaction) FreezeWith(c Client) (*FrozenTransaction, error) {
	return freeze(t.op, t.memo, t.maxFee, c.Payer(), c.Node())
}

// TokenCreateTransaction creates a token class.
type TokenCreateTransaction struct {
	op     TokenCreateOp
	memo   string
	maxFee int64
}

func NewTokenCreateTransaction() *TokenCreateTransaction { return &TokenCreateTransaction{} }

func (t *TokenCreateTransaction) SetName(name string) *TokenCreateTransaction {
	t.op.Name = name
	return t
}

func (t *TokenCreateTransaction) SetSymbol(symbol string) *TokenCreateTransaction {
	t.op.Symbol = symbol
	return t
}

func (t *TokenCreateTransaction) SetDecimals(d uint32) *TokenCreateTransaction {
	t.op.Decimals = d
	return t
}

func (t *TokenCreateTransaction) SetInitialSupply(s uint64) *TokenCreateTransaction {
	t.op.InitialSupply = s
	return t
}

// SetNonFungible marks the class as NFT; supply is then minted per serial.
func (t *TokenCreateTransaction) SetNonFungible(v bool) *TokenCreateTransaction {
	t.op.NonFungible = v
	return t
}

// SetTreasury sets the account that receives the initial supply and must co-sign.
func (t *TokenCreateTransaction) SetTreasury(id EntityID) *TokenCreateTransaction {
	t.op.Treasury = id
	return t
}

func (t *TokenCreateTransaction) SetAdminKey(key PublicKey) *TokenCreateTransaction {
	spec := key.Spec()
	t.op.AdminKey = &spec
	return t
}

func (t *TokenCreateTransaction) SetSupplyKey(key PublicKey) *TokenCreateTransaction {
	spec := key.Spec()
	t.op.SupplyKey = &spec
	return t
}

func (t *TokenCreateTransaction) AddCustomFee(fee CustomFee) *TokenCreateTransaction {
	t.op.CustomFees = append(t.op.CustomFees, fee)
	return t
}

func (t *TokenCreateTransaction) FreezeWith(c Client) (*FrozenTransaction, error) {
	return freeze(t.op, t.memo, t.maxFee, c.Payer(), c.Node())
}

// TokenMintTransaction mints fungible supply or NFT serials.
type TokenMintTransaction struct {
	op     TokenMintOp
	maxFee int64
}

func NewTokenMintTransaction() *TokenMintTransaction { return &TokenMintTransaction{} }

func (t *TokenMintTransaction) SetToken(id EntityID) *TokenMintTransaction {
	t.op.Token = id
	return t
}

func (t *TokenMintTransaction) SetAmount(amount uint64) *TokenMintTransaction {
	t.op.Amount = amount
	return t
}

// AddMetadata appends per-serial metadata for NFT mints.
func (t *TokenMintTransaction) AddMetadata(meta string) *TokenMintTransaction {
	t.op.Metadata = append(t.op.Metadata, meta)
	return t
}

func (t *TokenMintTransaction) FreezeWith(c Client) (*FrozenTransaction, error) {
	return freeze(t.op, "", t.maxFee, c.Payer(), c.Node())
}

// TokenAssociateTransaction opts an account into holding tokens.
type TokenAssociateTransaction struct {
	op     TokenAssociateOp
	maxFee int64
}

func NewTokenAssociateTransaction() *TokenAssociateTransaction { return &TokenAssociateTransaction{} }

func (t *TokenAssociateTransaction) SetAccount(id EntityID) *TokenAssociateTransaction {
	t.op.Account = id
	return t
}

func (t *TokenAssociateTransaction) AddToken(id EntityID) *TokenAssociateTransaction {
	t.op.Tokens = append(t.op.Tokens, id)
	return t
}

func (t *TokenAssociateTransaction) FreezeWith(c Client) (*FrozenTransaction, error) {
	return freeze(t.op, "", t.maxFee, c.Payer(), c.Node())
}

// TopicCreateTransaction creates a consensus topic.
type TopicCreateTransaction struct {
	op     TopicCreateOp
	maxFee int64
}

func NewTopicCreateTransaction() *TopicCreateTransaction { return &TopicCreateTransaction{} }

func (t *TopicCreateTransaction) SetMemo(memo string) *TopicCreateTransaction {
	t.op.Memo = memo
	return t
}

func (t *TopicCreateTransaction) SetAdminKey(key PublicKey) *TopicCreateTransaction {
	spec := key.Spec()
	t.op.AdminKey = &spec
	return t
}

func (t *TopicCreateTransaction) SetSubmitKey(key PublicKey) *TopicCreateTransaction {
	spec := key.Spec()
	t.op.SubmitKey = &spec
	return t
}

func (t *TopicCreateTransaction) FreezeWith(c Client) (*FrozenTransaction, error) {
	return freeze(t.op, "", t.maxFee, c.Payer(), c.Node())
}
