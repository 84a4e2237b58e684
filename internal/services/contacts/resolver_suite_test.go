package contacts

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	cachemocks "github.com/BearBump/DeliveryWatch/internal/cache/mocks"
	contactsmocks "github.com/BearBump/DeliveryWatch/internal/services/contacts/mocks"
	"github.com/BearBump/DeliveryWatch/internal/storage/pgshipment"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type plainDecrypter struct {
	err error
}

func (d plainDecrypter) Decrypt(encoded string) (string, error) {
	if d.err != nil {
		return "", d.err
	}
	return "dec:" + encoded, nil
}

type ResolverSuite struct {
	suite.Suite

	repo  *contactsmocks.MockRepository
	cache *cachemocks.MockBytesCache
	r     *Resolver
}

func (s *ResolverSuite) SetupTest() {
	s.repo = &contactsmocks.MockRepository{}
	s.cache = &cachemocks.MockBytesCache{}
	s.r = New(s.repo, plainDecrypter{}, s.cache, 10*time.Minute)
}

func (s *ResolverSuite) TestResolve_CacheHit_NoDB() {
	b, _ := json.Marshal(pgshipment.StoredContact{Owner: "u1", Nickname: "kim", PhoneEncrypted: "ENC"})
	s.cache.On("Get", mock.Anything, "contact:u1:encrypted").Return(b, true, nil).Once()

	c, err := s.r.Resolve(context.Background(), "u1")
	s.Require().NoError(err)
	s.Require().Equal("dec:ENC", c.Phone)
	s.Require().Equal("kim", c.Nickname)

	s.repo.AssertNotCalled(s.T(), "GetContact", mock.Anything, mock.Anything)
	s.cache.AssertExpectations(s.T())
}

func (s *ResolverSuite) TestResolve_CacheMiss_LoadsAndCaches() {
	s.cache.On("Get", mock.Anything, "contact:u1:encrypted").Return([]byte(nil), false, nil).Once()
	s.repo.On("GetContact", mock.Anything, "u1").
		Return(pgshipment.StoredContact{Owner: "u1", PhoneEncrypted: "ENC"}, true, nil).
		Once()
	s.cache.On("Set", mock.Anything, "contact:u1:encrypted", mock.Anything, 10*time.Minute).
		Return(errors.New("set failed")).
		Once()

	c, err := s.r.Resolve(context.Background(), "u1")
	s.Require().NoError(err)
	s.Require().Equal("dec:ENC", c.Phone)
	// No nickname stored: fall back to owner id.
	s.Require().Equal("u1", c.Nickname)
	s.repo.AssertExpectations(s.T())
	s.cache.AssertExpectations(s.T())
}

func (s *ResolverSuite) TestResolve_CacheErrorOrBadJSON_IsMiss() {
	s.cache.On("Get", mock.Anything, "contact:u1:encrypted").Return([]byte("not-json"), true, nil).Once()
	s.cache.On("Get", mock.Anything, "contact:u2:encrypted").Return([]byte(nil), false, errors.New("redis down")).Once()
	s.repo.On("GetContact", mock.Anything, "u1").Return(pgshipment.StoredContact{Owner: "u1", PhoneEncrypted: "A"}, true, nil).Once()
	s.repo.On("GetContact", mock.Anything, "u2").Return(pgshipment.StoredContact{Owner: "u2", PhoneEncrypted: "B"}, true, nil).Once()
	s.cache.On("Set", mock.Anything, mock.Anything, mock.Anything, 10*time.Minute).Return(nil).Twice()

	_, err := s.r.Resolve(context.Background(), "u1")
	s.Require().NoError(err)
	_, err = s.r.Resolve(context.Background(), "u2")
	s.Require().NoError(err)
	s.repo.AssertExpectations(s.T())
	s.cache.AssertExpectations(s.T())
}

func (s *ResolverSuite) TestResolve_NoPhone_Unavailable_NotCached() {
	s.cache.On("Get", mock.Anything, "contact:u1:encrypted").Return([]byte(nil), false, nil).Once()
	s.repo.On("GetContact", mock.Anything, "u1").Return(pgshipment.StoredContact{}, false, nil).Once()

	_, err := s.r.Resolve(context.Background(), "u1")
	s.Require().ErrorIs(err, ErrContactUnavailable)
	s.cache.AssertNotCalled(s.T(), "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *ResolverSuite) TestResolve_DecryptFailure_Unavailable() {
	r := New(s.repo, plainDecrypter{err: errors.New("bad padding")}, nil, 0)
	s.repo.On("GetContact", mock.Anything, "u1").Return(pgshipment.StoredContact{Owner: "u1", PhoneEncrypted: "X"}, true, nil).Once()

	_, err := r.Resolve(context.Background(), "u1")
	s.Require().ErrorIs(err, ErrContactUnavailable)
}

func (s *ResolverSuite) TestResolve_RepoError_NotUnavailable() {
	r := New(s.repo, plainDecrypter{}, nil, 0)
	want := errors.New("db down")
	s.repo.On("GetContact", mock.Anything, "u1").Return(pgshipment.StoredContact{}, false, want).Once()

	_, err := r.Resolve(context.Background(), "u1")
	s.Require().ErrorIs(err, want)
	s.Require().NotErrorIs(err, ErrContactUnavailable)
}

func (s *ResolverSuite) TestResolve_EmptyOwner() {
	_, err := s.r.Resolve(context.Background(), "")
	s.Require().ErrorIs(err, ErrContactUnavailable)
}

func TestResolverSuite(t *testing.T) {
	suite.Run(t, new(ResolverSuite))
}
