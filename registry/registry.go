// Package registry implements the certificate registry state machine: the owner and
// administrator set, the pause gate, the append-only certificate ledger and the
// student index.
package registry

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"certledger/domainerrors"
	"certledger/model"

	"github.com/hyperledger/fabric/common/flogging"
)

var logger = flogging.MustGetLogger("certledger.registry")

const (
	certificateObjectType = "Certificate"
	adminFlagObjectType   = "AdminFlag"

	maxStringInputLength = 256
	maxDescriptionLength = 1024

	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Role is the minimum authority an operation requires from its caller.
type Role int

const (
	RoleAnyone Role = iota
	RoleAdministrator
	RoleOwner
)

func (r Role) String() string {
	switch r {
	case RoleAnyone:
		return "anyone"
	case RoleAdministrator:
		return "administrator"
	case RoleOwner:
		return "owner"
	default:
		return fmt.Sprintf("role(%d)", int(r))
	}
}

// IssueRequest carries the caller-supplied fields of a new certificate.
type IssueRequest struct {
	Student            string
	StudentName        string
	CourseName         string
	CertificateHash    string
	Description        string
	WorkloadHours      int
	IssuingInstitution string
}

// Registry orchestrates authorization, the pause gate and the ledger for one registry instance.
type Registry struct {
	store     Store
	clock     Clock
	publisher Publisher
}

// Option configures a Registry.
type Option func(*Registry)

// WithClock sets the source of issuance and revocation timestamps.
func WithClock(clock Clock) Option {
	return func(r *Registry) {
		r.clock = clock
	}
}

// WithPublisher sets the receiver of state change events.
func WithPublisher(p Publisher) Option {
	return func(r *Registry) {
		r.publisher = p
	}
}

// New creates a Registry over store.
func New(store Store, opts ...Option) (*Registry, error) {
	if store == nil {
		return nil, errors.New("registry store cannot be nil")
	}
	r := &Registry{store: store, clock: SystemClock}
	for _, opt := range opts {
		opt(r)
	}
	if r.clock == nil {
		r.clock = SystemClock
	}
	return r, nil
}

// NewInMemory returns a Registry over a fresh MemoryStore.
func NewInMemory(opts ...Option) *Registry {
	r, _ := New(NewMemoryStore(), opts...)
	return r
}

// --- Authorization ---

// Authorize fails with an unauthorized error unless caller holds at least role.
// The owner is implicitly an administrator.
func (r *Registry) Authorize(caller string, role Role) error {
	if role == RoleAnyone {
		return nil
	}
	if strings.TrimSpace(caller) == "" {
		return domainerrors.New(domainerrors.CodeUnauthorized, "caller identity cannot be empty")
	}
	owner, err := r.store.Owner()
	if err != nil {
		return domainerrors.Wrap(err, domainerrors.CodeInternal, "failed to read registry owner")
	}
	if owner == "" {
		return domainerrors.New(domainerrors.CodeUnauthorized, "registry is not initialized")
	}
	if caller == owner {
		return nil
	}
	if role == RoleOwner {
		return domainerrors.Newf(domainerrors.CodeUnauthorized, "caller '%s' is not the registry owner", caller)
	}
	isAdmin, err := r.store.HasAdministrator(caller)
	if err != nil {
		return domainerrors.Wrap(err, domainerrors.CodeInternal, "failed to check administrator membership")
	}
	if !isAdmin {
		return domainerrors.Newf(domainerrors.CodeUnauthorized, "caller '%s' is not an administrator", caller)
	}
	return nil
}

// --- IdentitySet ---

// Initialize makes caller the owner of an uninitialized registry.
func (r *Registry) Initialize(caller string) error {
	if strings.TrimSpace(caller) == "" {
		return domainerrors.New(domainerrors.CodeInvalidInput, "Initialize: caller identity cannot be empty")
	}
	owner, err := r.store.Owner()
	if err != nil {
		return domainerrors.Wrap(err, domainerrors.CodeInternal, "Initialize: failed to read registry owner")
	}
	if owner != "" {
		return domainerrors.Newf(domainerrors.CodeConflict, "Initialize: registry already initialized with owner '%s'", owner)
	}
	now, err := r.now()
	if err != nil {
		return err
	}
	if err := r.store.SetOwner(caller, now); err != nil {
		return domainerrors.Wrap(err, domainerrors.CodeInternal, "Initialize: failed to save registry owner")
	}
	logger.Infof("Registry initialized. Owner: '%s'.", caller)
	r.publish(&model.RegistryEvent{Name: model.EventRegistryInitialized, Actor: caller, Timestamp: now})
	return nil
}

// Owner returns the registry owner, or "" before initialization.
func (r *Registry) Owner() (string, error) {
	owner, err := r.store.Owner()
	if err != nil {
		return "", domainerrors.Wrap(err, domainerrors.CodeInternal, "failed to read registry owner")
	}
	return owner, nil
}

// AddAdministrator grants target administrator rights. Adding an existing member is a no-op.
func (r *Registry) AddAdministrator(caller, target string) error {
	if err := r.Authorize(caller, RoleOwner); err != nil {
		return fmt.Errorf("AddAdministrator: %w", err)
	}
	if err := model.ValidateIdentity("target", target); err != nil {
		return fmt.Errorf("AddAdministrator: %w", err)
	}
	exists, err := r.store.HasAdministrator(target)
	if err != nil {
		return domainerrors.Wrap(err, domainerrors.CodeInternal, "AddAdministrator: failed to check administrator membership")
	}
	if exists {
		logger.Infof("Identity '%s' is already an administrator. No action needed.", target)
		return nil
	}
	now, err := r.now()
	if err != nil {
		return err
	}
	record := &model.AdministratorRecord{
		ObjectType: adminFlagObjectType,
		Identity:   target,
		AddedBy:    caller,
		AddedAt:    now,
	}
	if err := r.store.PutAdministrator(record); err != nil {
		return domainerrors.Wrap(err, domainerrors.CodeInternal, "AddAdministrator: failed to save administrator")
	}
	logger.Infof("Identity '%s' has been made an administrator by '%s'.", target, caller)
	r.publish(&model.RegistryEvent{Name: model.EventAdministratorAdded, Actor: caller, Target: target, Timestamp: now})
	return nil
}

// RemoveAdministrator revokes target's administrator rights. Removing a non-member or
// the owner is a no-op.
func (r *Registry) RemoveAdministrator(caller, target string) error {
	if err := r.Authorize(caller, RoleOwner); err != nil {
		return fmt.Errorf("RemoveAdministrator: %w", err)
	}
	if err := model.ValidateIdentity("target", target); err != nil {
		return fmt.Errorf("RemoveAdministrator: %w", err)
	}
	if target == caller {
		logger.Infof("RemoveAdministrator: '%s' is the owner; owner authority is not revocable. No action needed.", target)
		return nil
	}
	exists, err := r.store.HasAdministrator(target)
	if err != nil {
		return domainerrors.Wrap(err, domainerrors.CodeInternal, "RemoveAdministrator: failed to check administrator membership")
	}
	if !exists {
		logger.Infof("Identity '%s' is not an administrator. No action needed.", target)
		return nil
	}
	now, err := r.now()
	if err != nil {
		return err
	}
	if err := r.store.DeleteAdministrator(target); err != nil {
		return domainerrors.Wrap(err, domainerrors.CodeInternal, "RemoveAdministrator: failed to delete administrator")
	}
	logger.Infof("Administrator rights of '%s' removed by '%s'.", target, caller)
	r.publish(&model.RegistryEvent{Name: model.EventAdministratorRemoved, Actor: caller, Target: target, Timestamp: now})
	return nil
}

// IsAdministrator reports whether identity is the owner or a member of the administrator set.
func (r *Registry) IsAdministrator(identity string) (bool, error) {
	if model.ValidateIdentity("identity", identity) != nil {
		return false, nil
	}
	err := r.Authorize(identity, RoleAdministrator)
	if err == nil {
		return true, nil
	}
	if domainerrors.HasCode(err, domainerrors.CodeUnauthorized) {
		return false, nil
	}
	return false, err
}

// Administrators returns the explicit administrator set ordered by identity. The owner
// is not listed unless it was added explicitly.
func (r *Registry) Administrators() ([]*model.AdministratorRecord, error) {
	records, err := r.store.Administrators()
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "failed to list administrators")
	}
	if records == nil {
		records = []*model.AdministratorRecord{}
	}
	return records, nil
}

// --- PauseGate ---

// Pause engages the pause gate. Pausing a paused registry is a no-op.
func (r *Registry) Pause(caller string) error {
	return r.setPaused("Pause", caller, true, model.EventRegistryPaused)
}

// Unpause releases the pause gate. Unpausing a running registry is a no-op.
func (r *Registry) Unpause(caller string) error {
	return r.setPaused("Unpause", caller, false, model.EventRegistryUnpaused)
}

func (r *Registry) setPaused(op, caller string, paused bool, event string) error {
	if err := r.Authorize(caller, RoleOwner); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	current, err := r.store.Paused()
	if err != nil {
		return domainerrors.Wrap(err, domainerrors.CodeInternal, op+": failed to read pause state")
	}
	if current == paused {
		logger.Infof("%s: registry pause state is already %t. No action needed.", op, paused)
		return nil
	}
	now, err := r.now()
	if err != nil {
		return err
	}
	if err := r.store.SetPaused(paused); err != nil {
		return domainerrors.Wrap(err, domainerrors.CodeInternal, op+": failed to save pause state")
	}
	logger.Infof("Registry pause state set to %t by '%s'.", paused, caller)
	r.publish(&model.RegistryEvent{Name: event, Actor: caller, Timestamp: now})
	return nil
}

// IsPaused reports the pause gate state.
func (r *Registry) IsPaused() (bool, error) {
	paused, err := r.store.Paused()
	if err != nil {
		return false, domainerrors.Wrap(err, domainerrors.CodeInternal, "failed to read pause state")
	}
	return paused, nil
}

// --- CertificateLedger ---

// IssueCertificate appends a valid certificate for req.Student and returns its ID.
func (r *Registry) IssueCertificate(caller string, req IssueRequest) (uint64, error) {
	if err := r.Authorize(caller, RoleAdministrator); err != nil {
		return 0, fmt.Errorf("IssueCertificate: %w", err)
	}
	paused, err := r.store.Paused()
	if err != nil {
		return 0, domainerrors.Wrap(err, domainerrors.CodeInternal, "IssueCertificate: failed to read pause state")
	}
	if paused {
		return 0, domainerrors.New(domainerrors.CodePaused, "IssueCertificate: registry is paused")
	}
	if err := validateIssueRequest(req); err != nil {
		return 0, fmt.Errorf("IssueCertificate: %w", err)
	}
	now, err := r.now()
	if err != nil {
		return 0, err
	}

	cert := &model.Certificate{
		ObjectType:         certificateObjectType,
		Student:            req.Student,
		StudentName:        req.StudentName,
		CourseName:         req.CourseName,
		CertificateHash:    req.CertificateHash,
		Description:        req.Description,
		WorkloadHours:      uint64(req.WorkloadHours),
		IssuingInstitution: req.IssuingInstitution,
		IssuedAt:           now,
		IssuedBy:           caller,
		Valid:              true,
	}
	id, err := r.store.Append(cert)
	if err != nil {
		return 0, domainerrors.Wrap(err, domainerrors.CodeInternal, "IssueCertificate: failed to append certificate")
	}
	logger.Infof("Certificate %d issued to '%s' by '%s'.", id, req.Student, caller)
	r.publish(&model.RegistryEvent{
		Name:          model.EventCertificateIssued,
		Actor:         caller,
		CertificateID: id,
		Student:       req.Student,
		Timestamp:     now,
	})
	return id, nil
}

// RevokeCertificate marks a certificate invalid. Revocation ignores the pause gate, and
// revoking a revoked certificate is a no-op.
func (r *Registry) RevokeCertificate(caller string, id uint64) error {
	if err := r.Authorize(caller, RoleAdministrator); err != nil {
		return fmt.Errorf("RevokeCertificate: %w", err)
	}
	now, err := r.now()
	if err != nil {
		return err
	}
	changed, err := r.store.Invalidate(id, caller, now)
	if err != nil {
		return domainerrors.Wrap(err, domainerrors.CodeInternal, "RevokeCertificate")
	}
	if !changed {
		logger.Infof("Certificate %d is already revoked. No action needed.", id)
		return nil
	}
	student := ""
	if cert, errGet := r.store.Get(id); errGet == nil {
		student = cert.Student
	}
	logger.Infof("Certificate %d revoked by '%s'.", id, caller)
	r.publish(&model.RegistryEvent{
		Name:          model.EventCertificateRevoked,
		Actor:         caller,
		CertificateID: id,
		Student:       student,
		Timestamp:     now,
	})
	return nil
}

// GetCertificate returns the certificate with the given ID.
func (r *Registry) GetCertificate(id uint64) (*model.Certificate, error) {
	cert, err := r.store.Get(id)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "GetCertificate")
	}
	return cert, nil
}

// TotalCertificates returns the number of certificates ever issued.
func (r *Registry) TotalCertificates() (uint64, error) {
	total, err := r.store.Total()
	if err != nil {
		return 0, domainerrors.Wrap(err, domainerrors.CodeInternal, "failed to read certificate total")
	}
	return total, nil
}

// CertificatesOfStudent returns the IDs issued to student in issuance order, revoked ones included.
func (r *Registry) CertificatesOfStudent(student string) ([]uint64, error) {
	if model.ValidateIdentity("student", student) != nil {
		return []uint64{}, nil
	}
	ids, err := r.store.IDsFor(student)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "failed to read student index")
	}
	if ids == nil {
		ids = []uint64{}
	}
	return ids, nil
}

// ListCertificates returns up to pageSize certificates starting at startID in ID order.
// A startID of 0 starts at the first certificate. A non-positive pageSize selects
// DefaultPageSize and larger values are capped at MaxPageSize.
func (r *Registry) ListCertificates(startID uint64, pageSize int) (*model.CertificatePage, error) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	if startID == 0 {
		startID = 1
	}
	total, err := r.TotalCertificates()
	if err != nil {
		return nil, err
	}

	page := &model.CertificatePage{Certificates: []*model.Certificate{}, Total: total}
	id := startID
	for ; id <= total && len(page.Certificates) < pageSize; id++ {
		cert, err := r.store.Get(id)
		if err != nil {
			return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, fmt.Sprintf("ListCertificates: failed to read certificate %d", id))
		}
		page.Certificates = append(page.Certificates, cert)
	}
	page.FetchedCount = int32(len(page.Certificates))
	if id <= total {
		page.NextStartID = id
	}
	logger.Debugf("ListCertificates: fetched %d certificates from %d, next %d.", page.FetchedCount, startID, page.NextStartID)
	return page, nil
}

// VerifyCertificate reports whether certificate id exists, is valid and carries hash.
func (r *Registry) VerifyCertificate(id uint64, hash string) (bool, error) {
	cert, err := r.store.Get(id)
	if err != nil {
		if domainerrors.HasCode(err, domainerrors.CodeNotFound) {
			return false, nil
		}
		return false, domainerrors.Wrap(err, domainerrors.CodeInternal, "VerifyCertificate")
	}
	return cert.Valid && cert.CertificateHash == hash, nil
}

// --- Helpers ---

func (r *Registry) now() (time.Time, error) {
	t, err := r.clock()
	if err != nil {
		return time.Time{}, domainerrors.Wrap(err, domainerrors.CodeInternal, "failed to read ledger time")
	}
	return t, nil
}

func (r *Registry) publish(event *model.RegistryEvent) {
	if r.publisher == nil {
		return
	}
	if err := r.publisher.Publish(event); err != nil {
		logger.Warningf("Failed to publish %s event: %v", event.Name, err)
	}
}

func validateIssueRequest(req IssueRequest) error {
	if err := model.ValidateIdentity("student", req.Student); err != nil {
		return err
	}
	if err := validateRequiredString(req.StudentName, "studentName", maxStringInputLength); err != nil {
		return err
	}
	if err := validateRequiredString(req.CourseName, "courseName", maxStringInputLength); err != nil {
		return err
	}
	if err := validateRequiredString(req.CertificateHash, "certificateHash", maxStringInputLength); err != nil {
		return err
	}
	if err := validateOptionalString(req.Description, "description", maxDescriptionLength); err != nil {
		return err
	}
	if err := validateRequiredString(req.IssuingInstitution, "issuingInstitution", maxStringInputLength); err != nil {
		return err
	}
	if req.WorkloadHours < 0 {
		return domainerrors.Newf(domainerrors.CodeInvalidInput, "workloadHours cannot be negative, got %d", req.WorkloadHours)
	}
	return nil
}

func validateRequiredString(input, field string, max int) error {
	if strings.TrimSpace(input) == "" {
		return domainerrors.Newf(domainerrors.CodeInvalidInput, "%s cannot be empty", field)
	}
	if len(input) > max {
		return domainerrors.Newf(domainerrors.CodeInvalidInput, "%s exceeds max length %d", field, max)
	}
	return nil
}

func validateOptionalString(input, field string, max int) error {
	if input != "" && len(input) > max {
		return domainerrors.Newf(domainerrors.CodeInvalidInput, "%s exceeds max length %d", field, max)
	}
	return nil
}
