package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nomoscl/pkg/cl"
	"nomoscl/pkg/cl/cltest"
	"nomoscl/pkg/ledger"
	"nomoscl/pkg/statements"
	"nomoscl/pkg/zkvm"
)

type rpcResult struct {
	Result map[string]any `json:"result"`
	Error  *JSONRPCError  `json:"error"`
}

func call(t *testing.T, url, method string, params ...string) rpcResult {
	t.Helper()
	if params == nil {
		params = []string{}
	}
	body, err := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"method":  method,
		"params":  params,
		"id":      1,
	})
	require.NoError(t, err)

	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var out rpcResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestSubmitBundleOverRPC(t *testing.T) {
	prover := zkvm.NewExecutorProver(statements.NewRegistry())
	l := ledger.New(prover, 6)
	srv := httptest.NewServer(NewServer(l, "").Handler())
	defer srv.Close()

	w := cltest.SwapWitness(t, cltest.RNG(90))
	for _, ptx := range w.Partials {
		for _, in := range ptx.Inputs {
			require.NoError(t, l.Mint(in.ToOutputWitness().Commit()))
		}
	}

	spent := w.Partials[0].Inputs[0]
	cm := spent.NoteCommitment()
	nf := spent.Commit().Nullifier

	res := call(t, srv.URL, "cl_getPath", cm.Hex())
	require.Nil(t, res.Error)
	assert.Len(t, res.Result["path"], 6)

	res = call(t, srv.URL, "cl_isSpent", nf.Hex())
	require.Nil(t, res.Error)
	assert.Equal(t, false, res.Result["spent"])

	sub, err := ledger.ProveBundle(context.Background(), prover, w, l.Commitments())
	require.NoError(t, err)
	raw, err := sub.MarshalBinary()
	require.NoError(t, err)

	res = call(t, srv.URL, "cl_submitBundle", hexutil.Encode(raw))
	require.Nil(t, res.Error)
	assert.EqualValues(t, 1, res.Result["height"])

	res = call(t, srv.URL, "cl_isSpent", nf.Hex())
	require.Nil(t, res.Error)
	assert.Equal(t, true, res.Result["spent"])

	root := l.Commitments().CurrentRoot()
	res = call(t, srv.URL, "cl_getRoot")
	require.Nil(t, res.Error)
	assert.Equal(t, hexutil.Encode(root[:]), res.Result["root"])
	assert.EqualValues(t, 6, res.Result["notes"])

	res = call(t, srv.URL, "cl_submitBundle", hexutil.Encode(raw))
	require.NotNil(t, res.Error)
	assert.Equal(t, codeBundleRejected, res.Error.Code)
}

func TestRPCErrors(t *testing.T) {
	l := ledger.New(zkvm.NewExecutorProver(statements.NewRegistry()), 4)
	srv := httptest.NewServer(NewServer(l, "").Handler())
	defer srv.Close()

	res := call(t, srv.URL, "cl_nope")
	require.NotNil(t, res.Error)
	assert.Equal(t, codeMethodNotFound, res.Error.Code)

	res = call(t, srv.URL, "cl_isSpent", "0x1234")
	require.NotNil(t, res.Error)
	assert.Equal(t, codeInvalidParams, res.Error.Code)

	res = call(t, srv.URL, "cl_getPath", cl.NoteCommitment{1}.Hex())
	require.NotNil(t, res.Error)
	assert.Equal(t, codeInvalidParams, res.Error.Code)

	res = call(t, srv.URL, "cl_submitBundle", "0xc0")
	require.NotNil(t, res.Error)
	assert.Equal(t, codeInvalidParams, res.Error.Code)

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}
