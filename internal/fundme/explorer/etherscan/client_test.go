package etherscan

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/compose-network/fundme-deployer/internal/fundme/domain"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var request = domain.VerificationRequest{
	ChainID:         11155111,
	Address:         common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3"),
	ContractName:    "contracts/FundMe.sol:FundMe",
	CompilerVersion: "v0.8.18+commit.87f61d96",
	SourceCode:      `{"language":"Solidity"}`,
	ConstructorArgs: "000000000000000000000000694aa1769357215de4fac081bf1f309adc325306",
}

type explorer struct {
	submit      func(w http.ResponseWriter, r *http.Request)
	statuses    []string
	statusCalls atomic.Int32
}

func (e *explorer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	switch r.Form.Get("action") {
	case "verifysourcecode":
		e.submit(w, r)
	case "checkverifystatus":
		i := int(e.statusCalls.Add(1)) - 1
		status := e.statuses[min(i, len(e.statuses)-1)]
		code := "0"
		if status == "Pass - Verified" {
			code = "1"
		}
		fmt.Fprintf(w, `{"status":%q,"message":"OK","result":%q}`, code, status)
	default:
		http.Error(w, "unknown action", http.StatusBadRequest)
	}
}

func acceptSubmission(w http.ResponseWriter, _ *http.Request) {
	fmt.Fprint(w, `{"status":"1","message":"OK","result":"ezq878u486pzijkvvmerl6a9mzwhv6sefgvqi5tkwceejc7tvn"}`)
}

func newTestClient(t *testing.T, handler http.Handler, apiKey string) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewClient(server.URL+"/v2/api", apiKey, WithPollInterval(time.Millisecond), WithTimeout(5*time.Second))
}

func TestVerifySourceSubmitsFormAndPolls(t *testing.T) {
	var submitted map[string]string
	e := &explorer{
		submit: func(w http.ResponseWriter, r *http.Request) {
			submitted = map[string]string{
				"chainid":               r.URL.Query().Get("chainid"),
				"apikey":                r.PostForm.Get("apikey"),
				"contractaddress":       r.PostForm.Get("contractaddress"),
				"contractname":          r.PostForm.Get("contractname"),
				"compilerversion":       r.PostForm.Get("compilerversion"),
				"codeformat":            r.PostForm.Get("codeformat"),
				"constructorArguements": r.PostForm.Get("constructorArguements"),
				"sourceCode":            r.PostForm.Get("sourceCode"),
			}
			acceptSubmission(w, r)
		},
		statuses: []string{"Pending in queue", "Pending in queue", "Pass - Verified"},
	}

	client := newTestClient(t, e, "key")
	require.NoError(t, client.VerifySource(context.Background(), request))

	assert.Equal(t, map[string]string{
		"chainid":               "11155111",
		"apikey":                "key",
		"contractaddress":       request.Address.Hex(),
		"contractname":          request.ContractName,
		"compilerversion":       request.CompilerVersion,
		"codeformat":            "solidity-standard-json-input",
		"constructorArguements": request.ConstructorArgs,
		"sourceCode":            request.SourceCode,
	}, submitted)
	assert.Equal(t, int32(3), e.statusCalls.Load())
}

func TestVerifySourceAlreadyVerifiedOnSubmit(t *testing.T) {
	e := &explorer{
		submit: func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, `{"status":"0","message":"NOTOK","result":"Contract source code already verified"}`)
		},
	}

	err := newTestClient(t, e, "key").VerifySource(context.Background(), request)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already verified")
	assert.Zero(t, e.statusCalls.Load())
}

func TestVerifySourceAlreadyVerifiedOnStatus(t *testing.T) {
	e := &explorer{submit: acceptSubmission, statuses: []string{"Already Verified"}}

	err := newTestClient(t, e, "key").VerifySource(context.Background(), request)
	require.ErrorContains(t, err, "Already Verified")
}

func TestVerifySourceFailure(t *testing.T) {
	e := &explorer{submit: acceptSubmission, statuses: []string{"Pending in queue", "Fail - Unable to verify"}}

	err := newTestClient(t, e, "key").VerifySource(context.Background(), request)
	require.ErrorContains(t, err, "Fail - Unable to verify")
}

func TestVerifySourceRequiresAPIKey(t *testing.T) {
	e := &explorer{submit: acceptSubmission}

	err := newTestClient(t, e, "").VerifySource(context.Background(), request)
	require.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestVerifySourceHTTPError(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	})

	err := newTestClient(t, handler, "key").VerifySource(context.Background(), request)
	require.ErrorContains(t, err, "HTTP 502")
}

func TestVerifySourceTimesOutWhilePending(t *testing.T) {
	e := &explorer{submit: acceptSubmission, statuses: []string{"Pending in queue"}}

	server := httptest.NewServer(e)
	t.Cleanup(server.Close)
	client := NewClient(server.URL, "key", WithPollInterval(time.Millisecond), WithTimeout(30*time.Millisecond))

	err := client.VerifySource(context.Background(), request)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestAddressURL(t *testing.T) {
	address := common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")
	assert.Equal(t, "https://sepolia.etherscan.io/address/0x5FbDB2315678afecb367f032d93F642f64180aa3#code", AddressURL("https://sepolia.etherscan.io/", address))
	assert.Empty(t, AddressURL("", address))
}
