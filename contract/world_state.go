package contract

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"certledger/domainerrors"
	"certledger/model"

	"github.com/hyperledger/fabric-chaincode-go/shim"
)

// Object types for composite keys, also usable as 'objectType' in CouchDB queries.
const (
	registryStateKey          = "RegistryState"      // Plain key holding the RegistryState singleton.
	certificateObjectType     = "Certificate"        // Attribute: zero-padded certificate ID.
	adminFlagObjectType       = "AdminFlag"          // Attribute: administrator identity.
	studentIndexObjectType    = "StudentCertificate" // Attributes: student identity, zero-padded certificate ID.
	registryStateObjectType   = "RegistryState"
	studentIndexPlaceholder   = 0x00
	certificateIDPaddingWidth = 20
)

// worldState implements registry.Store on top of the chaincode stub. Every write lands in
// the transaction's write set, so a failed transaction leaves no partial state behind.
type worldState struct {
	stub shim.ChaincodeStubInterface
}

func newWorldState(stub shim.ChaincodeStubInterface) *worldState {
	return &worldState{stub: stub}
}

// padID renders id so that lexical key order equals numeric order.
func padID(id uint64) string {
	return fmt.Sprintf("%0*d", certificateIDPaddingWidth, id)
}

func (w *worldState) readState() (*model.RegistryState, error) {
	stateBytes, err := w.stub.GetState(registryStateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read registry state: %w", err)
	}
	if stateBytes == nil {
		return &model.RegistryState{ObjectType: registryStateObjectType}, nil
	}
	var state model.RegistryState
	if err := json.Unmarshal(stateBytes, &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal registry state: %w", err)
	}
	return &state, nil
}

func (w *worldState) writeState(state *model.RegistryState) error {
	stateBytes, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal registry state: %w", err)
	}
	if err := w.stub.PutState(registryStateKey, stateBytes); err != nil {
		return fmt.Errorf("failed to save registry state: %w", err)
	}
	return nil
}

// --- IdentitySet ---

func (w *worldState) Owner() (string, error) {
	state, err := w.readState()
	if err != nil {
		return "", err
	}
	return state.Owner, nil
}

func (w *worldState) SetOwner(owner string, at time.Time) error {
	state, err := w.readState()
	if err != nil {
		return err
	}
	state.Owner = owner
	state.InitializedAt = at
	return w.writeState(state)
}

func (w *worldState) adminKey(identity string) (string, error) {
	return w.stub.CreateCompositeKey(adminFlagObjectType, []string{identity})
}

func (w *worldState) HasAdministrator(identity string) (bool, error) {
	key, err := w.adminKey(identity)
	if err != nil {
		return false, fmt.Errorf("failed to create admin flag key: %w", err)
	}
	flagBytes, err := w.stub.GetState(key)
	if err != nil {
		return false, fmt.Errorf("failed to read admin flag for '%s': %w", identity, err)
	}
	return flagBytes != nil, nil
}

func (w *worldState) PutAdministrator(record *model.AdministratorRecord) error {
	key, err := w.adminKey(record.Identity)
	if err != nil {
		return fmt.Errorf("failed to create admin flag key: %w", err)
	}
	recordBytes, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal administrator record: %w", err)
	}
	if err := w.stub.PutState(key, recordBytes); err != nil {
		return fmt.Errorf("failed to save admin flag for '%s': %w", record.Identity, err)
	}
	return nil
}

func (w *worldState) DeleteAdministrator(identity string) error {
	key, err := w.adminKey(identity)
	if err != nil {
		return fmt.Errorf("failed to create admin flag key: %w", err)
	}
	if err := w.stub.DelState(key); err != nil {
		return fmt.Errorf("failed to delete admin flag for '%s': %w", identity, err)
	}
	return nil
}

func (w *worldState) Administrators() ([]*model.AdministratorRecord, error) {
	resultsIterator, err := w.stub.GetStateByPartialCompositeKey(adminFlagObjectType, []string{})
	if err != nil {
		return nil, fmt.Errorf("failed to get admin flag iterator: %w", err)
	}
	defer resultsIterator.Close()

	records := []*model.AdministratorRecord{}
	for resultsIterator.HasNext() {
		queryResponse, iterErr := resultsIterator.Next()
		if iterErr != nil {
			return nil, fmt.Errorf("failed to iterate admin flags: %w", iterErr)
		}
		var record model.AdministratorRecord
		if err := json.Unmarshal(queryResponse.Value, &record); err != nil {
			logger.Warningf("Administrators: Failed to unmarshal admin flag for key '%s': %v. Skipping.", queryResponse.Key, err)
			continue
		}
		records = append(records, &record)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Identity < records[j].Identity })
	return records, nil
}

// --- PauseGate ---

func (w *worldState) Paused() (bool, error) {
	state, err := w.readState()
	if err != nil {
		return false, err
	}
	return state.Paused, nil
}

func (w *worldState) SetPaused(paused bool) error {
	state, err := w.readState()
	if err != nil {
		return err
	}
	state.Paused = paused
	return w.writeState(state)
}

// --- CertificateLedger + StudentIndex ---

func (w *worldState) Total() (uint64, error) {
	state, err := w.readState()
	if err != nil {
		return 0, err
	}
	return state.TotalCertificates, nil
}

func (w *worldState) certificateKey(id uint64) (string, error) {
	return w.stub.CreateCompositeKey(certificateObjectType, []string{padID(id)})
}

func (w *worldState) putCertificate(cert *model.Certificate) error {
	key, err := w.certificateKey(cert.ID)
	if err != nil {
		return fmt.Errorf("failed to create certificate key: %w", err)
	}
	certBytes, err := json.Marshal(cert)
	if err != nil {
		return fmt.Errorf("failed to marshal certificate %d: %w", cert.ID, err)
	}
	if err := w.stub.PutState(key, certBytes); err != nil {
		return fmt.Errorf("failed to save certificate %d: %w", cert.ID, err)
	}
	return nil
}

func (w *worldState) Append(cert *model.Certificate) (uint64, error) {
	state, err := w.readState()
	if err != nil {
		return 0, err
	}
	id := state.TotalCertificates + 1
	cert.ID = id
	if err := w.putCertificate(cert); err != nil {
		return 0, err
	}
	indexKey, err := w.stub.CreateCompositeKey(studentIndexObjectType, []string{cert.Student, padID(id)})
	if err != nil {
		return 0, fmt.Errorf("failed to create student index key: %w", err)
	}
	if err := w.stub.PutState(indexKey, []byte{studentIndexPlaceholder}); err != nil {
		return 0, fmt.Errorf("failed to save student index entry for certificate %d: %w", id, err)
	}
	state.TotalCertificates = id
	if err := w.writeState(state); err != nil {
		return 0, err
	}
	return id, nil
}

func (w *worldState) Get(id uint64) (*model.Certificate, error) {
	total, err := w.Total()
	if err != nil {
		return nil, err
	}
	if id == 0 || id > total {
		return nil, domainerrors.Newf(domainerrors.CodeNotFound, "certificate %d does not exist", id)
	}
	key, err := w.certificateKey(id)
	if err != nil {
		return nil, fmt.Errorf("failed to create certificate key: %w", err)
	}
	certBytes, err := w.stub.GetState(key)
	if err != nil {
		return nil, fmt.Errorf("failed to read certificate %d: %w", id, err)
	}
	if certBytes == nil {
		return nil, domainerrors.Newf(domainerrors.CodeNotFound, "certificate %d does not exist", id)
	}
	var cert model.Certificate
	if err := json.Unmarshal(certBytes, &cert); err != nil {
		return nil, fmt.Errorf("failed to unmarshal certificate %d: %w", id, err)
	}
	return &cert, nil
}

func (w *worldState) Invalidate(id uint64, revokedBy string, revokedAt time.Time) (bool, error) {
	cert, err := w.Get(id)
	if err != nil {
		return false, err
	}
	if !cert.Valid {
		return false, nil
	}
	cert.Valid = false
	cert.RevokedBy = revokedBy
	cert.RevokedAt = revokedAt
	if err := w.putCertificate(cert); err != nil {
		return false, err
	}
	return true, nil
}

func (w *worldState) IDsFor(student string) ([]uint64, error) {
	ids := []uint64{}
	if student == "" {
		return ids, nil
	}
	resultsIterator, err := w.stub.GetStateByPartialCompositeKey(studentIndexObjectType, []string{student})
	if err != nil {
		return nil, fmt.Errorf("failed to get student index iterator: %w", err)
	}
	defer resultsIterator.Close()

	for resultsIterator.HasNext() {
		queryResponse, iterErr := resultsIterator.Next()
		if iterErr != nil {
			return nil, fmt.Errorf("failed to iterate student index: %w", iterErr)
		}
		_, attributes, err := w.stub.SplitCompositeKey(queryResponse.Key)
		if err != nil || len(attributes) != 2 {
			logger.Warningf("IDsFor: Malformed student index key '%s'. Skipping.", queryResponse.Key)
			continue
		}
		id, err := strconv.ParseUint(attributes[1], 10, 64)
		if err != nil {
			logger.Warningf("IDsFor: Malformed certificate ID in student index key '%s': %v. Skipping.", queryResponse.Key, err)
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}
