package contract

import (
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"certledger/domainerrors"
	"certledger/model"

	"github.com/hyperledger/fabric-chaincode-go/shimtest"
	"github.com/hyperledger/fabric-contract-api-go/contractapi"
	"github.com/stretchr/testify/suite"
	"google.golang.org/protobuf/types/known/timestamppb"
)

const (
	ownerID   = "x509::CN=owner,OU=client::CN=ca.org1.example.com"
	adminID   = "x509::CN=admin,OU=client::CN=ca.org1.example.com"
	studentID = "x509::CN=student,OU=client::CN=ca.org1.example.com"
	otherID   = "x509::CN=other,OU=client::CN=ca.org1.example.com"
	testMSPID = "Org1MSP"
)

// fakeIdentity stands in for the peer-provided client identity.
type fakeIdentity struct {
	id    string
	msp   string
	attrs map[string]string
}

func (f *fakeIdentity) GetID() (string, error)    { return f.id, nil }
func (f *fakeIdentity) GetMSPID() (string, error) { return f.msp, nil }

func (f *fakeIdentity) GetAttributeValue(name string) (string, bool, error) {
	v, ok := f.attrs[name]
	return v, ok, nil
}

func (f *fakeIdentity) AssertAttributeValue(name, value string) error {
	if v, ok := f.attrs[name]; !ok || v != value {
		return fmt.Errorf("attribute '%s' does not equal '%s'", name, value)
	}
	return nil
}

func (f *fakeIdentity) GetX509Certificate() (*x509.Certificate, error) {
	return nil, errors.New("no certificate in test identity")
}

type CertificateContractSuite struct {
	suite.Suite
	stub     *shimtest.MockStub
	contract *CertificateContract
	tokens   *TokenContract
	txSeq    int
	txTime   time.Time
}

func TestCertificateContractSuite(t *testing.T) {
	suite.Run(t, new(CertificateContractSuite))
}

func (s *CertificateContractSuite) SetupTest() {
	s.stub = shimtest.NewMockStub("certledger", nil)
	s.contract = NewCertificateContract()
	s.tokens = NewTokenContract()
	s.txSeq = 0
	s.txTime = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	s.Require().NoError(s.invoke(ownerID, func(ctx contractapi.TransactionContextInterface) error {
		return s.contract.InitLedger(ctx)
	}))
	s.Require().NoError(s.invoke(ownerID, func(ctx contractapi.TransactionContextInterface) error {
		return s.contract.AddAdministrator(ctx, adminID)
	}))
	s.drainEvents()
}

func (s *CertificateContractSuite) ctxFor(identity string) contractapi.TransactionContextInterface {
	ctx := new(contractapi.TransactionContext)
	ctx.SetStub(s.stub)
	ctx.SetClientIdentity(&fakeIdentity{id: identity, msp: testMSPID, attrs: map[string]string{}})
	return ctx
}

// invoke runs fn inside one mock transaction submitted by identity.
func (s *CertificateContractSuite) invoke(identity string, fn func(ctx contractapi.TransactionContextInterface) error) error {
	s.txSeq++
	txID := fmt.Sprintf("tx%d", s.txSeq)
	s.stub.MockTransactionStart(txID)
	s.txTime = s.txTime.Add(time.Minute)
	s.stub.TxTimestamp = timestamppb.New(s.txTime)
	defer s.stub.MockTransactionEnd(txID)
	return fn(s.ctxFor(identity))
}

func (s *CertificateContractSuite) issue(identity, student, hash string) (uint64, error) {
	var id uint64
	err := s.invoke(identity, func(ctx contractapi.TransactionContextInterface) error {
		var errIssue error
		id, errIssue = s.contract.IssueCertificate(ctx, student, "Aluno Teste", "Blockchain 101",
			hash, "Introductory course", 40, "Universidade Federal")
		return errIssue
	})
	return id, err
}

func (s *CertificateContractSuite) drainEvents() []string {
	var names []string
	for {
		select {
		case ev := <-s.stub.ChaincodeEventsChannel:
			names = append(names, ev.EventName)
		default:
			return names
		}
	}
}

func (s *CertificateContractSuite) TestInitLedger() {
	s.Run("second call conflicts", func() {
		err := s.invoke(otherID, func(ctx contractapi.TransactionContextInterface) error {
			return s.contract.InitLedger(ctx)
		})
		s.True(errors.Is(err, domainerrors.ErrConflict))
	})

	s.Run("owner is stored", func() {
		owner, err := s.contract.GetOwner(s.ctxFor(otherID))
		s.Require().NoError(err)
		s.Equal(ownerID, owner)
	})

	s.Run("registry state is persisted as JSON", func() {
		raw, err := s.stub.GetState(registryStateKey)
		s.Require().NoError(err)
		var state model.RegistryState
		s.Require().NoError(json.Unmarshal(raw, &state))
		s.Equal(ownerID, state.Owner)
		s.False(state.Paused)
		s.Zero(state.TotalCertificates)
	})
}

func (s *CertificateContractSuite) TestIssueAndRevokeScenario() {
	id, err := s.issue(adminID, studentID, "hash123")
	s.Require().NoError(err)
	s.Equal(uint64(1), id)
	s.Equal([]string{model.EventCertificateIssued}, s.drainEvents())

	total, err := s.contract.GetTotalCertificates(s.ctxFor(otherID))
	s.Require().NoError(err)
	s.Equal(uint64(1), total)

	cert, err := s.contract.GetCertificate(s.ctxFor(otherID), 1)
	s.Require().NoError(err)
	s.Equal("Aluno Teste", cert.StudentName)
	s.Equal(uint64(40), cert.WorkloadHours)
	s.Equal(adminID, cert.IssuedBy)
	s.WithinDuration(s.txTime, cert.IssuedAt, 0)
	s.True(cert.Valid)

	s.Require().NoError(s.invoke(adminID, func(ctx contractapi.TransactionContextInterface) error {
		return s.contract.RevokeCertificate(ctx, 1)
	}))
	s.Equal([]string{model.EventCertificateRevoked}, s.drainEvents())

	cert, err = s.contract.GetCertificate(s.ctxFor(otherID), 1)
	s.Require().NoError(err)
	s.False(cert.Valid)
	s.Equal(adminID, cert.RevokedBy)

	ids, err := s.contract.GetCertificatesOfStudent(s.ctxFor(otherID), studentID)
	s.Require().NoError(err)
	s.Equal([]uint64{1}, ids)
}

func (s *CertificateContractSuite) TestPauseScenario() {
	s.Require().NoError(s.invoke(ownerID, func(ctx contractapi.TransactionContextInterface) error {
		return s.contract.PauseContract(ctx)
	}))
	paused, err := s.contract.IsPaused(s.ctxFor(otherID))
	s.Require().NoError(err)
	s.True(paused)

	_, err = s.issue(adminID, studentID, "hash123")
	s.True(errors.Is(err, domainerrors.ErrPaused))

	s.Require().NoError(s.invoke(ownerID, func(ctx contractapi.TransactionContextInterface) error {
		return s.contract.UnpauseContract(ctx)
	}))
	id, err := s.issue(adminID, studentID, "hash1234")
	s.Require().NoError(err)
	s.Equal(uint64(1), id)

	total, err := s.contract.GetTotalCertificates(s.ctxFor(otherID))
	s.Require().NoError(err)
	s.Equal(uint64(1), total)
	s.Equal([]string{model.EventRegistryPaused, model.EventRegistryUnpaused, model.EventCertificateIssued}, s.drainEvents())
}

func (s *CertificateContractSuite) TestAuthorization() {
	s.Run("stranger cannot issue", func() {
		_, err := s.issue(otherID, studentID, "hash123")
		s.True(errors.Is(err, domainerrors.ErrUnauthorized))
	})

	s.Run("administrator cannot pause or manage administrators", func() {
		err := s.invoke(adminID, func(ctx contractapi.TransactionContextInterface) error {
			return s.contract.PauseContract(ctx)
		})
		s.True(errors.Is(err, domainerrors.ErrUnauthorized))
		err = s.invoke(adminID, func(ctx contractapi.TransactionContextInterface) error {
			return s.contract.AddAdministrator(ctx, otherID)
		})
		s.True(errors.Is(err, domainerrors.ErrUnauthorized))
	})

	s.Run("removed administrator loses issuance rights", func() {
		s.Require().NoError(s.invoke(ownerID, func(ctx contractapi.TransactionContextInterface) error {
			return s.contract.RemoveAdministrator(ctx, adminID)
		}))
		ok, err := s.contract.IsAdministrator(s.ctxFor(otherID), adminID)
		s.Require().NoError(err)
		s.False(ok)
		_, err = s.issue(adminID, studentID, "hash123")
		s.True(errors.Is(err, domainerrors.ErrUnauthorized))
	})

	s.Run("owner issues without membership", func() {
		id, err := s.issue(ownerID, studentID, "hash123")
		s.Require().NoError(err)
		s.Equal(uint64(1), id)
	})

	s.Run("negative workload is invalid", func() {
		err := s.invoke(ownerID, func(ctx contractapi.TransactionContextInterface) error {
			_, errIssue := s.contract.IssueCertificate(ctx, studentID, "Aluno Teste", "Blockchain 101",
				"hash", "", -1, "Universidade Federal")
			return errIssue
		})
		s.True(errors.Is(err, domainerrors.ErrInvalidInput))
	})
}

func (s *CertificateContractSuite) TestAdministrators() {
	s.Require().NoError(s.invoke(ownerID, func(ctx contractapi.TransactionContextInterface) error {
		return s.contract.AddAdministrator(ctx, otherID)
	}))
	records, err := s.contract.GetAdministrators(s.ctxFor(studentID))
	s.Require().NoError(err)
	s.Require().Len(records, 2)
	identities := []string{records[0].Identity, records[1].Identity}
	s.ElementsMatch([]string{adminID, otherID}, identities)
	s.Equal(ownerID, records[0].AddedBy)
}

func (s *CertificateContractSuite) TestStudentIndexAndPagination() {
	for i := 0; i < 12; i++ {
		student := studentID
		if i%3 == 0 {
			student = otherID
		}
		_, err := s.issue(adminID, student, fmt.Sprintf("hash-%d", i))
		s.Require().NoError(err)
		s.drainEvents()
	}

	ids, err := s.contract.GetCertificatesOfStudent(s.ctxFor(studentID), otherID)
	s.Require().NoError(err)
	s.Equal([]uint64{1, 4, 7, 10}, ids)

	ids, err = s.contract.GetCertificatesOfStudent(s.ctxFor(studentID), "x509::CN=nobody")
	s.Require().NoError(err)
	s.Empty(ids)

	page, err := s.contract.ListCertificates(s.ctxFor(studentID), 0, 5)
	s.Require().NoError(err)
	s.Equal(int32(5), page.FetchedCount)
	s.Equal(uint64(6), page.NextStartID)
	s.Equal(uint64(12), page.Total)

	page, err = s.contract.ListCertificates(s.ctxFor(studentID), 11, 5)
	s.Require().NoError(err)
	s.Equal(int32(2), page.FetchedCount)
	s.Zero(page.NextStartID)
	s.Equal("hash-11", page.Certificates[1].CertificateHash)
}

func (s *CertificateContractSuite) TestVerifyAndHistory() {
	_, err := s.issue(adminID, studentID, "hash123")
	s.Require().NoError(err)

	ok, err := s.contract.VerifyCertificate(s.ctxFor(otherID), 1, "hash123")
	s.Require().NoError(err)
	s.True(ok)

	ok, err = s.contract.VerifyCertificate(s.ctxFor(otherID), 5, "hash123")
	s.Require().NoError(err)
	s.False(ok)

	history, err := s.contract.GetCertificateHistory(s.ctxFor(otherID), 1)
	s.Require().NoError(err)
	s.NotNil(history)

	_, err = s.contract.GetCertificateHistory(s.ctxFor(otherID), 9)
	s.True(errors.Is(err, domainerrors.ErrNotFound))
}

func (s *CertificateContractSuite) TestGetCertificateNotFound() {
	_, err := s.contract.GetCertificate(s.ctxFor(otherID), 0)
	s.True(errors.Is(err, domainerrors.ErrNotFound))
	_, err = s.contract.GetCertificate(s.ctxFor(otherID), 3)
	s.True(errors.Is(err, domainerrors.ErrNotFound))
}

func (s *CertificateContractSuite) TestGetCallerIdentity() {
	identity, err := s.contract.GetCallerIdentity(s.ctxFor(ownerID))
	s.Require().NoError(err)
	s.Equal(ownerID, identity.ID)
	s.Equal(testMSPID, identity.MSPID)
	s.Equal(testMSPID, identity.EnrollmentID)
	s.True(identity.IsOwner)
	s.True(identity.IsAdministrator)

	ctx := new(contractapi.TransactionContext)
	ctx.SetStub(s.stub)
	ctx.SetClientIdentity(&fakeIdentity{id: studentID, msp: testMSPID, attrs: map[string]string{enrollmentIDAttribute: "student1"}})
	identity, err = s.contract.GetCallerIdentity(ctx)
	s.Require().NoError(err)
	s.Equal("student1", identity.EnrollmentID)
	s.False(identity.IsOwner)
	s.False(identity.IsAdministrator)
}

func (s *CertificateContractSuite) TestMissingIdentityIsUnauthorized() {
	err := s.invoke("", func(ctx contractapi.TransactionContextInterface) error {
		return s.contract.PauseContract(ctx)
	})
	s.True(errors.Is(err, domainerrors.ErrUnauthorized))
}

func (s *CertificateContractSuite) TestFabricCAIdentity() {
	subject := "CN=registrar-department-of-computer-science,OU=client+OU=org1+OU=department1,O=Hyperledger,ST=North Carolina,C=US"
	issuer := "CN=fabric-ca-server.org1.example.com,OU=Fabric,O=org1.example.com,L=Durham,ST=North Carolina,C=US"
	longID := base64.StdEncoding.EncodeToString([]byte("x509::" + subject + "::" + issuer))
	s.Require().Greater(len(longID), 256)

	s.Require().NoError(s.invoke(ownerID, func(ctx contractapi.TransactionContextInterface) error {
		return s.contract.AddAdministrator(ctx, longID)
	}))
	ok, err := s.contract.IsAdministrator(s.ctxFor(otherID), longID)
	s.Require().NoError(err)
	s.True(ok)

	id, err := s.issue(longID, longID, "hash123")
	s.Require().NoError(err)
	ids, err := s.contract.GetCertificatesOfStudent(s.ctxFor(otherID), longID)
	s.Require().NoError(err)
	s.Equal([]uint64{id}, ids)
	cert, err := s.contract.GetCertificate(s.ctxFor(otherID), id)
	s.Require().NoError(err)
	s.Equal(longID, cert.IssuedBy)
}

func (s *CertificateContractSuite) TestMalformedIdentitiesAreInvalidInput() {
	for _, bad := range []string{"bad\x00student", "bad\U0010FFFFstudent", "bad\xffstudent"} {
		_, err := s.issue(adminID, bad, "hash123")
		s.True(errors.Is(err, domainerrors.ErrInvalidInput), "student %q: %v", bad, err)

		err = s.invoke(ownerID, func(ctx contractapi.TransactionContextInterface) error {
			return s.contract.AddAdministrator(ctx, bad)
		})
		s.True(errors.Is(err, domainerrors.ErrInvalidInput), "target %q: %v", bad, err)

		ok, err := s.contract.IsAdministrator(s.ctxFor(otherID), bad)
		s.Require().NoError(err)
		s.False(ok)
		ids, err := s.contract.GetCertificatesOfStudent(s.ctxFor(otherID), bad)
		s.Require().NoError(err)
		s.Empty(ids)
	}

	total, err := s.contract.GetTotalCertificates(s.ctxFor(otherID))
	s.Require().NoError(err)
	s.Zero(total)
	s.Empty(s.drainEvents())
}

func (s *CertificateContractSuite) TestMustGetCallerFullID() {
	s.Equal(ownerID, MustGetCallerFullID(s.ctxFor(ownerID)))
	s.Equal(unresolvedCaller, MustGetCallerFullID(s.ctxFor("")))

	ctx := new(contractapi.TransactionContext)
	ctx.SetStub(s.stub)
	s.Equal(unresolvedCaller, MustGetCallerFullID(ctx))
}

func (s *CertificateContractSuite) TestTokenContract() {
	s.Require().NoError(s.invoke(ownerID, func(ctx contractapi.TransactionContextInterface) error {
		return s.tokens.InitToken(ctx, "CertiToken", "CTK", 1000)
	}))
	s.Require().NoError(s.invoke(ownerID, func(ctx contractapi.TransactionContextInterface) error {
		return s.tokens.Transfer(ctx, studentID, 300)
	}))
	s.Equal([]string{model.EventTokenInitialized, model.EventTokensTransferred}, s.drainEvents())

	balance, err := s.tokens.BalanceOf(s.ctxFor(otherID), studentID)
	s.Require().NoError(err)
	s.Equal(uint64(300), balance)
	balance, err = s.tokens.BalanceOf(s.ctxFor(otherID), ownerID)
	s.Require().NoError(err)
	s.Equal(uint64(700), balance)

	err = s.invoke(studentID, func(ctx contractapi.TransactionContextInterface) error {
		return s.tokens.Transfer(ctx, otherID, 301)
	})
	s.True(errors.Is(err, domainerrors.ErrInsufficientBalance))

	supply, err := s.tokens.TotalSupply(s.ctxFor(otherID))
	s.Require().NoError(err)
	s.Equal(uint64(1000), supply)

	info, err := s.tokens.GetTokenInfo(s.ctxFor(otherID))
	s.Require().NoError(err)
	s.Equal("CTK", info.Symbol)
	s.Equal(ownerID, info.Minter)

	raw, err := s.stub.GetState(registryStateKey)
	s.Require().NoError(err)
	var state model.RegistryState
	s.Require().NoError(json.Unmarshal(raw, &state))
	s.Zero(state.TotalCertificates, "token operations never touch registry state")
}

func (s *CertificateContractSuite) TestPadID() {
	s.Equal("00000000000000000042", padID(42))
	s.Less(padID(9), padID(10))
}
