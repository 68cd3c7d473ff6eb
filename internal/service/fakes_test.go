package service

import (
	"context"
	"fmt"
	"hash/fnv"
	"sort"
	"strings"

	"datastd-go/internal/model"
	"datastd-go/pkg/vectorstore"

	"gorm.io/gorm"
)

// 本包测试使用内存伪实现替代 MySQL 与向量库，不依赖任何外部服务。

type fakeRootRepo struct {
	nextID uint
	roots  map[uint]model.WordRoot
}

func newFakeRootRepo() *fakeRootRepo {
	return &fakeRootRepo{roots: map[uint]model.WordRoot{}}
}

func (r *fakeRootRepo) Create(root *model.WordRoot) error {
	r.nextID++
	root.ID = r.nextID
	r.roots[root.ID] = *root
	return nil
}

func (r *fakeRootRepo) FindByID(id uint) (*model.WordRoot, error) {
	root, ok := r.roots[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &root, nil
}

func (r *fakeRootRepo) FindAll() ([]model.WordRoot, error) {
	ids := make([]uint, 0, len(r.roots))
	for id := range r.roots {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]model.WordRoot, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.roots[id])
	}
	return out, nil
}

func (r *fakeRootRepo) FindBatchByIDs(ids []uint) ([]model.WordRoot, error) {
	var out []model.WordRoot
	for _, id := range ids {
		if root, ok := r.roots[id]; ok {
			out = append(out, root)
		}
	}
	return out, nil
}

func (r *fakeRootRepo) FindByCnName(cnName string) (*model.WordRoot, error) {
	for _, root := range r.roots {
		if root.CnName == cnName {
			root := root
			return &root, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeRootRepo) FindByTerm(term string) ([]model.WordRoot, error) {
	all, _ := r.FindAll()
	var out []model.WordRoot
	for _, root := range all {
		if root.CnName == term ||
			strings.Contains(" "+root.AssociatedTerms+" ", " "+term+" ") {
			out = append(out, root)
		}
	}
	return out, nil
}

func (r *fakeRootRepo) List(page, pageSize int, q string) ([]model.WordRoot, int64, error) {
	all, _ := r.FindAll()
	var filtered []model.WordRoot
	for _, root := range all {
		if q == "" || strings.Contains(root.CnName, q) || strings.Contains(root.EnAbbr, q) {
			filtered = append(filtered, root)
		}
	}
	return filtered, int64(len(filtered)), nil
}

func (r *fakeRootRepo) Update(root *model.WordRoot) error {
	if _, ok := r.roots[root.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.roots[root.ID] = *root
	return nil
}

func (r *fakeRootRepo) Delete(id uint) error {
	delete(r.roots, id)
	return nil
}

func (r *fakeRootRepo) TruncateAll() error {
	r.roots = map[uint]model.WordRoot{}
	r.nextID = 0
	return nil
}

type fakeFieldRepo struct {
	nextID uint
	fields map[uint]model.StandardField
}

func newFakeFieldRepo() *fakeFieldRepo {
	return &fakeFieldRepo{fields: map[uint]model.StandardField{}}
}

func (r *fakeFieldRepo) Create(field *model.StandardField) error {
	r.nextID++
	field.ID = r.nextID
	r.fields[field.ID] = *field
	return nil
}

func (r *fakeFieldRepo) FindByID(id uint) (*model.StandardField, error) {
	field, ok := r.fields[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &field, nil
}

func (r *fakeFieldRepo) FindAll() ([]model.StandardField, error) {
	ids := make([]uint, 0, len(r.fields))
	for id := range r.fields {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]model.StandardField, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.fields[id])
	}
	return out, nil
}

func (r *fakeFieldRepo) FindReferencing(rootID uint) ([]model.StandardField, error) {
	all, _ := r.FindAll()
	var out []model.StandardField
	for _, field := range all {
		for _, id := range field.CompositionIDs {
			if id == rootID {
				out = append(out, field)
				break
			}
		}
	}
	return out, nil
}

func (r *fakeFieldRepo) SearchLexical(q string, limit int) ([]model.StandardField, error) {
	all, _ := r.FindAll()
	var out []model.StandardField
	for _, field := range all {
		if strings.Contains(field.FieldCnName, q) ||
			strings.Contains(strings.ToLower(field.FieldEnName), q) ||
			strings.Contains(field.AssociatedTerms, q) {
			out = append(out, field)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (r *fakeFieldRepo) List(page, pageSize int, q string) ([]model.StandardField, int64, error) {
	all, _ := r.FindAll()
	return all, int64(len(all)), nil
}

func (r *fakeFieldRepo) Update(field *model.StandardField) error {
	if _, ok := r.fields[field.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.fields[field.ID] = *field
	return nil
}

func (r *fakeFieldRepo) Delete(id uint) error {
	delete(r.fields, id)
	return nil
}

func (r *fakeFieldRepo) TruncateAll() error {
	r.fields = map[uint]model.StandardField{}
	r.nextID = 0
	return nil
}

type fakeTaskRepo struct {
	nextID uint
	tasks  map[uint]model.MappingTask
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{tasks: map[uint]model.MappingTask{}}
}

func (r *fakeTaskRepo) Create(task *model.MappingTask) error {
	r.nextID++
	task.ID = r.nextID
	r.tasks[task.ID] = *task
	return nil
}

func (r *fakeTaskRepo) FindByID(id uint) (*model.MappingTask, error) {
	task, ok := r.tasks[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &task, nil
}

func (r *fakeTaskRepo) List(page, pageSize int) ([]model.MappingTask, int64, error) {
	ids := make([]uint, 0, len(r.tasks))
	for id := range r.tasks {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]model.MappingTask, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.tasks[id])
	}
	return out, int64(len(out)), nil
}

func (r *fakeTaskRepo) CountUnprocessed() (int64, error) {
	var count int64
	for _, task := range r.tasks {
		if !task.Processed {
			count++
		}
	}
	return count, nil
}

func (r *fakeTaskRepo) Update(task *model.MappingTask) error {
	if _, ok := r.tasks[task.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.tasks[task.ID] = *task
	return nil
}

type fakeUserRepo struct {
	nextID uint
	users  map[uint]model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[uint]model.User{}}
}

func (r *fakeUserRepo) Create(user *model.User) error {
	r.nextID++
	user.ID = r.nextID
	r.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) FindByID(id uint) (*model.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &user, nil
}

func (r *fakeUserRepo) FindByUsername(username string) (*model.User, error) {
	for _, user := range r.users {
		if user.Username == username {
			user := user
			return &user, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) FindAll() ([]model.User, error) {
	out := make([]model.User, 0, len(r.users))
	for _, user := range r.users {
		out = append(out, user)
	}
	return out, nil
}

func (r *fakeUserRepo) Update(user *model.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) Delete(id uint) error {
	delete(r.users, id)
	return nil
}

// fakeEmbedder 基于 FNV 哈希生成确定性向量：相同文本恒得相同向量。
type fakeEmbedder struct {
	dim    int
	failOn map[string]bool
	calls  int
}

func newFakeEmbedder() *fakeEmbedder {
	return &fakeEmbedder{dim: 4, failOn: map[string]bool{}}
}

func (e *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	e.calls++
	if e.failOn[text] {
		return nil, fmt.Errorf("模型推理失败: %s", text)
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(text))
	seed := h.Sum32()
	vec := make([]float32, e.dim)
	for i := range vec {
		seed = seed*1664525 + 1013904223
		vec[i] = float32(seed%1000) / 1000
	}
	return vec, nil
}

func (e *fakeEmbedder) Dimensions() int {
	return e.dim
}

// fakeStore 在内存中记录集合与点，并可注入失败与固定检索结果。
type fakeStore struct {
	collections map[string]int
	points      map[string]map[uint]map[string]string

	failUpsert    bool
	failDelete    bool
	searchResults []vectorstore.ScoredPoint
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		collections: map[string]int{},
		points:      map[string]map[uint]map[string]string{},
	}
}

func (s *fakeStore) EnsureCollection(_ context.Context, name string, dim int) error {
	s.collections[name] = dim
	if s.points[name] == nil {
		s.points[name] = map[uint]map[string]string{}
	}
	return nil
}

func (s *fakeStore) UpsertPoint(_ context.Context, collection string, id uint, _ []float32, payload map[string]string) error {
	if s.failUpsert {
		return fmt.Errorf("向量库不可用")
	}
	if s.points[collection] == nil {
		s.points[collection] = map[uint]map[string]string{}
	}
	s.points[collection][id] = payload
	return nil
}

func (s *fakeStore) DeletePoint(_ context.Context, collection string, id uint) error {
	if s.failDelete {
		return fmt.Errorf("向量库不可用")
	}
	delete(s.points[collection], id)
	return nil
}

func (s *fakeStore) DropCollection(_ context.Context, name string) error {
	delete(s.collections, name)
	delete(s.points, name)
	return nil
}

func (s *fakeStore) Search(_ context.Context, _ string, _ []float32, topK int) ([]vectorstore.ScoredPoint, error) {
	if len(s.searchResults) > topK {
		return s.searchResults[:topK], nil
	}
	return s.searchResults, nil
}
