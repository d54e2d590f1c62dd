package chain

import "github.com/ethereum/go-ethereum/common"

// gatewayABI is the interface of the deployed upload/access contract.
const gatewayABI = `[
  {"type":"function","name":"add","stateMutability":"nonpayable",
   "inputs":[{"name":"_user","type":"address"},{"name":"url","type":"string"}],"outputs":[]},
  {"type":"function","name":"display","stateMutability":"view",
   "inputs":[{"name":"_user","type":"address"}],"outputs":[{"name":"","type":"string[]"}]},
  {"type":"function","name":"allow","stateMutability":"nonpayable",
   "inputs":[{"name":"user","type":"address"}],"outputs":[]},
  {"type":"function","name":"disallow","stateMutability":"nonpayable",
   "inputs":[{"name":"user","type":"address"}],"outputs":[]},
  {"type":"function","name":"shareAccess","stateMutability":"view","inputs":[],
   "outputs":[{"name":"","type":"tuple[]","components":[
     {"name":"user","type":"address"},{"name":"access","type":"bool"}]}]}
]`

// Contract method names
const (
	methodAdd         = "add"
	methodDisplay     = "display"
	methodAllow       = "allow"
	methodDisallow    = "disallow"
	methodShareAccess = "shareAccess"
)

// accessEntry mirrors the Access tuple returned by shareAccess.
type accessEntry struct {
	User   common.Address
	Access bool
}
