/*
Package registry provides the client for the on-chain device registry
contract: registering a capture device fingerprint by staking collateral, and
reading back whitelist status and stake.

The package implements the interfaces.ChainClient boundary consumed by the
registration controller. It owns everything go-ethereum: ABI encoding,
transaction signing via bind.TransactOpts, broadcast, and receipt polling.
The contract's economic logic (stake amount enforcement, slashing,
whitelisting rules) lives on-chain; this client only calls into it.

# Transaction Operations

State-modifying operations require transaction signing. Before calling
RegisterDevice or Broadcast you must call SetTransactOpts with transaction
options carrying a signer; without them ErrNoTransactOpts is returned and
classified as a signing rejection.

Read-only operations (IsWhitelisted, StakeOf) work immediately after
creating a client.

# Usage Example

	ethClient, _ := ethclient.Dial(rpcAddr)
	client, err := registry.NewClient(ethClient, ethClient, contractAddr)
	if err != nil {
		log.Fatalf("failed to create registry client: %v", err)
	}

	auth, _ := bind.NewKeyedTransactorWithChainID(privateKey, chainID)
	client.SetTransactOpts(auth)

	hash, err := client.Broadcast(ctx, deviceID)
	if err == nil {
		err = client.WaitForReceipt(ctx, hash)
	}
*/
package registry
