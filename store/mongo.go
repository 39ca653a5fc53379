package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"simplog/models"
)

// NewMongo wires every repository onto the given database using the
// canonical collection names.
func NewMongo(db *mongo.Database) Stores {
	return Stores{
		Posts:       &mongoPosts{c: db.Collection("posts")},
		PostImages:  &mongoPostImages{c: db.Collection("postimages")},
		Likes:       &mongoLikes{c: db.Collection("likeposts")},
		Collections: &mongoCollections{c: db.Collection("collections")},
		Follows:     &mongoFollows{c: db.Collection("follows")},
		Comments:    &mongoComments{c: db.Collection("comments")},
		Activities:  &mongoActivities{c: db.Collection("activities")},
		Users:       &mongoUsers{c: db.Collection("users")},
		VerifyCodes: &mongoVerifyCodes{c: db.Collection("verifycodes")},
	}
}

func mapErr(err error) error {
	if err == mongo.ErrNoDocuments {
		return ErrNotFound
	}
	return err
}

// ===== posts =====

type mongoPosts struct {
	c *mongo.Collection
}

func (s *mongoPosts) Insert(ctx context.Context, p *models.Post) error {
	_, err := s.c.InsertOne(ctx, p)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return err
}

func (s *mongoPosts) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	var p models.Post
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return nil, mapErr(err)
	}
	return &p, nil
}

func (s *mongoPosts) FindSibling(ctx context.Context, postID string, status models.PostStatus) (*models.Post, error) {
	var p models.Post
	err := s.c.FindOne(ctx, bson.M{"postId": postID, "status": status}).Decode(&p)
	if err != nil {
		return nil, mapErr(err)
	}
	return &p, nil
}

func (s *mongoPosts) Update(ctx context.Context, id primitive.ObjectID, upd PostUpdate) error {
	set := bson.M{}
	if upd.HeaderBg != nil {
		set["headerBg"] = *upd.HeaderBg
	}
	if upd.Title != nil {
		set["title"] = *upd.Title
	}
	if upd.Body != nil {
		set["body"] = *upd.Body
	}
	if upd.Category != nil {
		set["category"] = *upd.Category
	}
	if upd.Tags != nil {
		set["tags"] = *upd.Tags
	}
	if upd.Status != nil {
		set["status"] = *upd.Status
	}
	if upd.UpdatedAt != nil {
		set["updatedAt"] = *upd.UpdatedAt
	}
	if len(set) == 0 {
		return nil
	}
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *mongoPosts) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (s *mongoPosts) IncRead(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"read": 1}})
	return err
}

func (s *mongoPosts) List(ctx context.Context, status models.PostStatus, pageNo, pageSize int64) ([]models.Post, int64, error) {
	filter := bson.M{"status": status}
	total, err := s.c.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip((pageNo - 1) * pageSize).
		SetLimit(pageSize)
	cursor, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var posts []models.Post
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

// ===== post images =====

type mongoPostImages struct {
	c *mongo.Collection
}

func (s *mongoPostImages) Find(ctx context.Context, postDocID primitive.ObjectID) (*models.PostImage, error) {
	var img models.PostImage
	if err := s.c.FindOne(ctx, bson.M{"postId": postDocID}).Decode(&img); err != nil {
		return nil, mapErr(err)
	}
	return &img, nil
}

func (s *mongoPostImages) Upsert(ctx context.Context, postDocID primitive.ObjectID, imageList []string) error {
	if imageList == nil {
		imageList = []string{}
	}
	_, err := s.c.UpdateOne(ctx,
		bson.M{"postId": postDocID},
		bson.M{"$set": bson.M{"imageList": imageList}},
		options.Update().SetUpsert(true),
	)
	return err
}

func (s *mongoPostImages) AddImage(ctx context.Context, postDocID primitive.ObjectID, name string) error {
	_, err := s.c.UpdateOne(ctx,
		bson.M{"postId": postDocID},
		bson.M{"$addToSet": bson.M{"imageList": name}},
		options.Update().SetUpsert(true),
	)
	return err
}

func (s *mongoPostImages) Delete(ctx context.Context, postDocID primitive.ObjectID) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"postId": postDocID})
	return err
}

// ===== likes =====

type mongoLikes struct {
	c *mongo.Collection
}

func (s *mongoLikes) Find(ctx context.Context, user, post primitive.ObjectID) (*models.LikePost, error) {
	var l models.LikePost
	if err := s.c.FindOne(ctx, bson.M{"user": user, "post": post}).Decode(&l); err != nil {
		return nil, mapErr(err)
	}
	return &l, nil
}

func (s *mongoLikes) Insert(ctx context.Context, l *models.LikePost) error {
	_, err := s.c.InsertOne(ctx, l)
	return err
}

func (s *mongoLikes) Delete(ctx context.Context, user, post primitive.ObjectID) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"user": user, "post": post})
	return err
}

func (s *mongoLikes) CountByPost(ctx context.Context, post primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"post": post})
}

func (s *mongoLikes) ListByPost(ctx context.Context, post primitive.ObjectID) ([]models.LikePost, error) {
	cursor, err := s.c.Find(ctx, bson.M{"post": post})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var likes []models.LikePost
	if err := cursor.All(ctx, &likes); err != nil {
		return nil, err
	}
	return likes, nil
}

func (s *mongoLikes) DeleteByPost(ctx context.Context, post primitive.ObjectID) error {
	_, err := s.c.DeleteMany(ctx, bson.M{"post": post})
	return err
}

// ===== collections =====

type mongoCollections struct {
	c *mongo.Collection
}

func (s *mongoCollections) Find(ctx context.Context, user, post primitive.ObjectID) (*models.Collection, error) {
	var col models.Collection
	if err := s.c.FindOne(ctx, bson.M{"user": user, "post": post}).Decode(&col); err != nil {
		return nil, mapErr(err)
	}
	return &col, nil
}

func (s *mongoCollections) Insert(ctx context.Context, col *models.Collection) error {
	_, err := s.c.InsertOne(ctx, col)
	return err
}

func (s *mongoCollections) Delete(ctx context.Context, user, post primitive.ObjectID) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"user": user, "post": post})
	return err
}

func (s *mongoCollections) ListByUser(ctx context.Context, user primitive.ObjectID, pageNo, pageSize int64) ([]models.Collection, int64, error) {
	filter := bson.M{"user": user}
	total, err := s.c.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip((pageNo - 1) * pageSize).
		SetLimit(pageSize)
	cursor, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var cols []models.Collection
	if err := cursor.All(ctx, &cols); err != nil {
		return nil, 0, err
	}
	return cols, total, nil
}

func (s *mongoCollections) DeleteByPost(ctx context.Context, post primitive.ObjectID) error {
	_, err := s.c.DeleteMany(ctx, bson.M{"post": post})
	return err
}

// ===== follows =====

type mongoFollows struct {
	c *mongo.Collection
}

func (s *mongoFollows) Find(ctx context.Context, from, to primitive.ObjectID) (*models.Follow, error) {
	var f models.Follow
	if err := s.c.FindOne(ctx, bson.M{"followFrom": from, "followTo": to}).Decode(&f); err != nil {
		return nil, mapErr(err)
	}
	return &f, nil
}

func (s *mongoFollows) Insert(ctx context.Context, f *models.Follow) error {
	_, err := s.c.InsertOne(ctx, f)
	return err
}

func (s *mongoFollows) Delete(ctx context.Context, from, to primitive.ObjectID) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"followFrom": from, "followTo": to})
	return err
}

// ===== comments =====

type mongoComments struct {
	c *mongo.Collection
}

func (s *mongoComments) Insert(ctx context.Context, c *models.Comment) error {
	_, err := s.c.InsertOne(ctx, c)
	return err
}

func (s *mongoComments) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Comment, error) {
	var c models.Comment
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		return nil, mapErr(err)
	}
	return &c, nil
}

func (s *mongoComments) ListByPost(ctx context.Context, post primitive.ObjectID) ([]models.Comment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := s.c.Find(ctx, bson.M{"post": post}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var comments []models.Comment
	if err := cursor.All(ctx, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

func (s *mongoComments) ListReplies(ctx context.Context, parentID primitive.ObjectID) ([]models.Comment, error) {
	cursor, err := s.c.Find(ctx, bson.M{"parentId": parentID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var comments []models.Comment
	if err := cursor.All(ctx, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

func (s *mongoComments) CountByPost(ctx context.Context, post primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"post": post})
}

func (s *mongoComments) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (s *mongoComments) DeleteByPost(ctx context.Context, post primitive.ObjectID) error {
	_, err := s.c.DeleteMany(ctx, bson.M{"post": post})
	return err
}

// ===== activities =====

type mongoActivities struct {
	c *mongo.Collection
}

func (s *mongoActivities) Insert(ctx context.Context, a *models.Activity) error {
	_, err := s.c.InsertOne(ctx, a)
	return err
}

func (s *mongoActivities) ListByUser(ctx context.Context, user primitive.ObjectID, pageNo, pageSize int64) ([]models.Activity, int64, error) {
	filter := bson.M{"user": user}
	total, err := s.c.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip((pageNo - 1) * pageSize).
		SetLimit(pageSize)
	cursor, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var activities []models.Activity
	if err := cursor.All(ctx, &activities); err != nil {
		return nil, 0, err
	}
	return activities, total, nil
}

func (s *mongoActivities) DeleteLike(ctx context.Context, user, post primitive.ObjectID) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"user": user, "likePost": post})
	return err
}

func (s *mongoActivities) DeleteCollection(ctx context.Context, user, post primitive.ObjectID) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"user": user, "collectionPost": post})
	return err
}

func (s *mongoActivities) DeleteFollow(ctx context.Context, from, to primitive.ObjectID) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"user": from, "followAuthor": to})
	return err
}

func (s *mongoActivities) DeleteByComment(ctx context.Context, comment primitive.ObjectID) error {
	_, err := s.c.DeleteMany(ctx, bson.M{"addComment": comment})
	return err
}

func (s *mongoActivities) DeleteByPost(ctx context.Context, post primitive.ObjectID) error {
	_, err := s.c.DeleteMany(ctx, bson.M{"$or": []bson.M{
		{"publish": post},
		{"likePost": post},
		{"collectionPost": post},
	}})
	return err
}

// ===== users =====

type mongoUsers struct {
	c *mongo.Collection
}

func (s *mongoUsers) Insert(ctx context.Context, u *models.User) error {
	_, err := s.c.InsertOne(ctx, u)
	return err
}

func (s *mongoUsers) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, mapErr(err)
	}
	return &u, nil
}

func (s *mongoUsers) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"username": username}).Decode(&u); err != nil {
		return nil, mapErr(err)
	}
	return &u, nil
}

func (s *mongoUsers) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"email": email}).Decode(&u); err != nil {
		return nil, mapErr(err)
	}
	return &u, nil
}

// ===== verify codes =====

type mongoVerifyCodes struct {
	c *mongo.Collection
}

func (s *mongoVerifyCodes) Insert(ctx context.Context, v *models.VerifyCode) error {
	_, err := s.c.InsertOne(ctx, v)
	return err
}

func (s *mongoVerifyCodes) FindByEmail(ctx context.Context, email string) (*models.VerifyCode, error) {
	var v models.VerifyCode
	opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if err := s.c.FindOne(ctx, bson.M{"email": email}, opts).Decode(&v); err != nil {
		return nil, mapErr(err)
	}
	return &v, nil
}
