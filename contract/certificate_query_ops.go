package contract

import (
	"encoding/json"
	"fmt"

	"certledger/model"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"
)

// --- Query Operations ---

func (s *CertificateContract) GetCertificate(ctx contractapi.TransactionContextInterface, id uint64) (*model.Certificate, error) {
	logger.Debugf("Chaincode Call: GetCertificate for %d", id)
	reg, err := registryFor(ctx)
	if err != nil {
		return nil, err
	}
	return reg.GetCertificate(id)
}

func (s *CertificateContract) GetTotalCertificates(ctx contractapi.TransactionContextInterface) (uint64, error) {
	logger.Debug("Chaincode Call: GetTotalCertificates")
	reg, err := registryFor(ctx)
	if err != nil {
		return 0, err
	}
	return reg.TotalCertificates()
}

func (s *CertificateContract) GetCertificatesOfStudent(ctx contractapi.TransactionContextInterface, student string) ([]uint64, error) {
	logger.Debugf("Chaincode Call: GetCertificatesOfStudent for '%s'", student)
	reg, err := registryFor(ctx)
	if err != nil {
		return nil, err
	}
	return reg.CertificatesOfStudent(student)
}

// ListCertificates returns a page of certificates in ID order. Pass the returned
// nextStartId to fetch the following page; 0 means the listing is complete.
func (s *CertificateContract) ListCertificates(ctx contractapi.TransactionContextInterface, startId uint64, pageSize int) (*model.CertificatePage, error) {
	logger.Debugf("Chaincode Call: ListCertificates from %d, pageSize %d", startId, pageSize)
	reg, err := registryFor(ctx)
	if err != nil {
		return nil, err
	}
	return reg.ListCertificates(startId, pageSize)
}

func (s *CertificateContract) VerifyCertificate(ctx contractapi.TransactionContextInterface, id uint64, certificateHash string) (bool, error) {
	logger.Debugf("Chaincode Call: VerifyCertificate for %d", id)
	reg, err := registryFor(ctx)
	if err != nil {
		return false, err
	}
	return reg.VerifyCertificate(id, certificateHash)
}

// GetCertificateHistory returns every committed state of certificate id, oldest first.
// A history database failure yields an empty history rather than an error.
func (s *CertificateContract) GetCertificateHistory(ctx contractapi.TransactionContextInterface, id uint64) ([]model.HistoryEntry, error) {
	logger.Debugf("Chaincode Call: GetCertificateHistory for %d", id)
	reg, err := registryFor(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := reg.GetCertificate(id); err != nil {
		return nil, fmt.Errorf("GetCertificateHistory: %w", err)
	}
	certKey, err := newWorldState(ctx.GetStub()).certificateKey(id)
	if err != nil {
		return nil, fmt.Errorf("GetCertificateHistory: failed to create certificate key: %w", err)
	}

	historyEntries := []model.HistoryEntry{}
	historyIter, errHist := ctx.GetStub().GetHistoryForKey(certKey)
	if errHist != nil || historyIter == nil {
		logger.Warningf("GetCertificateHistory: Failed to get history for certificate %d: %v. Returning empty history.", id, errHist)
		return historyEntries, nil
	}
	defer historyIter.Close()

	for historyIter.HasNext() {
		historyItem, iterErr := historyIter.Next()
		if iterErr != nil {
			logger.Warningf("GetCertificateHistory: Error iterating history for certificate %d: %v. Skipping entry.", id, iterErr)
			continue
		}
		var pastState model.Certificate
		if !historyItem.IsDelete {
			_ = json.Unmarshal(historyItem.Value, &pastState)
		}
		entry := model.HistoryEntry{
			TxID:     historyItem.TxId,
			IsDelete: historyItem.IsDelete,
			Valid:    pastState.Valid,
			Value:    string(historyItem.Value),
		}
		if historyItem.Timestamp != nil {
			entry.Timestamp = historyItem.Timestamp.AsTime()
		}
		historyEntries = append(historyEntries, entry)
	}
	return historyEntries, nil
}
