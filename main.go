package main

import (
	"os"

	"certledger/config"
	"certledger/contract"

	"github.com/hyperledger/fabric-chaincode-go/shim"
	"github.com/hyperledger/fabric-contract-api-go/contractapi"
	"github.com/hyperledger/fabric/common/flogging"
)

var logger = flogging.MustGetLogger("certledger.main")

func main() {
	cfg, err := config.Load(os.Getenv("CERTLEDGER_CONFIG_FILE"))
	if err != nil {
		panic("Error loading configuration: " + err.Error())
	}
	if err := flogging.Global.ActivateSpec(cfg.LogSpec); err != nil {
		panic("Error activating log spec '" + cfg.LogSpec + "': " + err.Error())
	}

	cc, err := contractapi.NewChaincode(contract.NewCertificateContract(), contract.NewTokenContract())
	if err != nil {
		panic("Error creating certledger chaincode: " + err.Error())
	}
	cc.DefaultContract = contract.CertificateContractName

	if !cfg.External() {
		if err := cc.Start(); err != nil {
			panic("Error starting chaincode: " + err.Error())
		}
		return
	}

	tlsProps, err := tlsProperties(cfg.TLS)
	if err != nil {
		panic("Error loading chaincode TLS material: " + err.Error())
	}
	server := &shim.ChaincodeServer{
		CCID:     cfg.CCID,
		Address:  cfg.Address,
		CC:       cc,
		TLSProps: tlsProps,
	}
	logger.Infof("Starting chaincode server %s on %s (TLS disabled: %t)", cfg.CCID, cfg.Address, cfg.TLS.Disabled)
	if err := server.Start(); err != nil {
		panic("Error starting chaincode server: " + err.Error())
	}
}

func tlsProperties(t config.TLS) (shim.TLSProperties, error) {
	if t.Disabled {
		return shim.TLSProperties{Disabled: true}, nil
	}
	key, err := os.ReadFile(t.KeyFile)
	if err != nil {
		return shim.TLSProperties{}, err
	}
	cert, err := os.ReadFile(t.CertFile)
	if err != nil {
		return shim.TLSProperties{}, err
	}
	props := shim.TLSProperties{Key: key, Cert: cert}
	if t.ClientCAFile != "" {
		props.ClientCACerts, err = os.ReadFile(t.ClientCAFile)
		if err != nil {
			return shim.TLSProperties{}, err
		}
	}
	return props, nil
}
