package client

//go:generate mockgen -source=contract_gateway.go -destination=mocks/contract_mock.go -package=mocks ContractInvoker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"certledger/client/mocks"
)

type ContractGatewaySuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	contract *mocks.MockContractInvoker
	gateway  *ContractGateway
}

func TestContractGatewaySuite(t *testing.T) {
	suite.Run(t, new(ContractGatewaySuite))
}

func (s *ContractGatewaySuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.contract = mocks.NewMockContractInvoker(s.ctrl)
	gateway, err := NewContractGateway(s.contract)
	s.Require().NoError(err)
	s.gateway = gateway
}

func (s *ContractGatewaySuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *ContractGatewaySuite) TestNewRejectsNilContract() {
	gateway, err := NewContractGateway(nil)
	s.Error(err)
	s.Nil(gateway)
}

func (s *ContractGatewaySuite) TestForwardsQualifiedNames() {
	s.contract.EXPECT().EvaluateTransaction("CertificateContract:VerifyCertificate", "7", "hash123").Return([]byte("true"), nil)
	s.contract.EXPECT().SubmitTransaction("TokenContract:Transfer", studentID, "5").Return(nil, nil)

	raw, err := s.gateway.Evaluate(context.Background(), certificateTx("VerifyCertificate"), "7", "hash123")
	s.Require().NoError(err)
	s.Equal("true", string(raw))
	_, err = s.gateway.Submit(context.Background(), tokenTx("Transfer"), studentID, "5")
	s.NoError(err)
}

func (s *ContractGatewaySuite) TestErrorsKeepTheirClassification() {
	s.contract.EXPECT().EvaluateTransaction("CertificateContract:IsPaused").Return(nil, errUnavailable)
	s.contract.EXPECT().SubmitTransaction("CertificateContract:PauseContract").Return(nil, errEndorsement)

	_, err := s.gateway.Evaluate(context.Background(), certificateTx("IsPaused"))
	s.True(errors.Is(err, errUnavailable))
	s.True(IsTransient(err))

	_, err = s.gateway.Submit(context.Background(), certificateTx("PauseContract"))
	s.True(errors.Is(err, errEndorsement))
	s.False(IsTransient(err))
}

func (s *ContractGatewaySuite) TestCanceledContextSkipsTheCall() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.gateway.Evaluate(ctx, certificateTx("IsPaused"))
	s.True(errors.Is(err, context.Canceled))
	_, err = s.gateway.Submit(ctx, certificateTx("PauseContract"))
	s.True(errors.Is(err, context.Canceled))
}

func (s *ContractGatewaySuite) TestClientRetriesThroughAdapter() {
	client, err := New(s.gateway, WithMaxTries(3), WithInitialInterval(time.Millisecond), WithMaxElapsedTime(time.Second))
	s.Require().NoError(err)

	gomock.InOrder(
		s.contract.EXPECT().EvaluateTransaction("CertificateContract:GetTotalCertificates").Return(nil, errUnavailable),
		s.contract.EXPECT().EvaluateTransaction("CertificateContract:GetTotalCertificates").Return([]byte("4"), nil),
	)
	total, err := client.GetTotalCertificates(context.Background())
	s.Require().NoError(err)
	s.Equal(uint64(4), total)
}
