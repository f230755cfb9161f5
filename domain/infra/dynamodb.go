package infra

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/enqbot/enqbot/domain/model"
	"github.com/google/uuid"
)

type DynamoDB struct {
	db *dynamodb.Client
}

var tableNamePrefix = "enqbot"
var postTableName = tableNamePrefix + "_posts"
var answerTableName = tableNamePrefix + "_answers"
var userTableName = tableNamePrefix + "_users"
var roomTableName = tableNamePrefix + "_rooms"

const pollPostIDIndexName = "PollPostIdIndex"

func NewDynamoDB() (*DynamoDB, error) {
	if os.Getenv("DYNAMO_TABLE_NAME_PREFIX") != "" {
		tableNamePrefix = os.Getenv("DYNAMO_TABLE_NAME_PREFIX")
		postTableName = tableNamePrefix + "_posts"
		answerTableName = tableNamePrefix + "_answers"
		userTableName = tableNamePrefix + "_users"
		roomTableName = tableNamePrefix + "_rooms"
	}
	var db *dynamodb.Client
	if os.Getenv("DYNAMO_LOCAL") != "" {
		cfg, err := config.LoadDefaultConfig(context.TODO(),
			config.WithRegion("dummy"),
			config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("dummy", "dummy", "dummy")),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to load configuration: %v", err)
		}

		db = dynamodb.NewFromConfig(cfg,
			func(o *dynamodb.Options) {
				o.BaseEndpoint = aws.String("http://localhost:8000")
			},
		)
	} else {
		cfg, err := config.LoadDefaultConfig(context.TODO())
		if err != nil {
			return nil, fmt.Errorf("failed to load configuration: %v", err)
		}

		db = dynamodb.NewFromConfig(cfg)
	}
	d := &DynamoDB{
		db: db,
	}
	if os.Getenv("DYNAMO_LOCAL") != "" {
		if err := d.EnsureTable(); err != nil {
			return nil, err
		}
	}
	return d, nil
}

const (
	waitInterval = 2 * time.Second // ポーリング間隔
	maxRetries   = 30              // 最大リトライ回数 (30回 = 約1分)
)

func (d *DynamoDB) EnsureTable() error {
	tableNames := []string{
		postTableName,
		answerTableName,
		userTableName,
		roomTableName,
	}

	for _, tableName := range tableNames {
		if err := d.ensureSingleTable(tableName); err != nil {
			return fmt.Errorf("failed to ensure table %s: %v", tableName, err)
		}
	}

	return nil
}

func (d *DynamoDB) ensureSingleTable(tableName string) error {
	_, err := d.db.DescribeTable(context.TODO(), &dynamodb.DescribeTableInput{
		TableName: aws.String(tableName),
	})
	if err == nil {
		// テーブルが既に存在する
		return nil
	}

	// テーブルを作成
	err = d.createTable(tableName)
	if err != nil {
		return err
	}

	// テーブルがACTIVEになるまで待機
	for i := 0; i < maxRetries; i++ {
		out, err := d.db.DescribeTable(context.TODO(), &dynamodb.DescribeTableInput{
			TableName: aws.String(tableName),
		})
		if err != nil {
			return fmt.Errorf("failed to describe table %s: %v", tableName, err)
		}

		if out.Table.TableStatus == types.TableStatusActive {
			return nil
		}

		time.Sleep(waitInterval)
	}

	return fmt.Errorf("table %s creation timed out", tableName)
}

func (d *DynamoDB) createTable(tableName string) error {
	var createTableInput *dynamodb.CreateTableInput

	switch tableName {
	case postTableName:
		createTableInput = &dynamodb.CreateTableInput{
			TableName: aws.String(tableName),
			AttributeDefinitions: []types.AttributeDefinition{
				{AttributeName: aws.String("post_id"), AttributeType: types.ScalarAttributeTypeS},
			},
			KeySchema: []types.KeySchemaElement{
				{AttributeName: aws.String("post_id"), KeyType: types.KeyTypeHash},
			},
			ProvisionedThroughput: &types.ProvisionedThroughput{
				ReadCapacityUnits:  aws.Int64(5),
				WriteCapacityUnits: aws.Int64(5),
			},
		}
	case answerTableName:
		createTableInput = &dynamodb.CreateTableInput{
			TableName: aws.String(tableName),
			AttributeDefinitions: []types.AttributeDefinition{
				{AttributeName: aws.String("answer_id"), AttributeType: types.ScalarAttributeTypeS},
				{AttributeName: aws.String("poll_post_id"), AttributeType: types.ScalarAttributeTypeS},
			},
			KeySchema: []types.KeySchemaElement{
				{AttributeName: aws.String("answer_id"), KeyType: types.KeyTypeHash},
			},
			GlobalSecondaryIndexes: []types.GlobalSecondaryIndex{
				{
					IndexName: aws.String(pollPostIDIndexName),
					KeySchema: []types.KeySchemaElement{
						{AttributeName: aws.String("poll_post_id"), KeyType: types.KeyTypeHash},
					},
					Projection: &types.Projection{ProjectionType: types.ProjectionTypeAll},
					ProvisionedThroughput: &types.ProvisionedThroughput{
						ReadCapacityUnits:  aws.Int64(5),
						WriteCapacityUnits: aws.Int64(5),
					},
				},
			},
			ProvisionedThroughput: &types.ProvisionedThroughput{
				ReadCapacityUnits:  aws.Int64(5),
				WriteCapacityUnits: aws.Int64(5),
			},
		}
	case userTableName:
		createTableInput = &dynamodb.CreateTableInput{
			TableName: aws.String(tableName),
			AttributeDefinitions: []types.AttributeDefinition{
				{AttributeName: aws.String("user_id"), AttributeType: types.ScalarAttributeTypeS},
			},
			KeySchema: []types.KeySchemaElement{
				{AttributeName: aws.String("user_id"), KeyType: types.KeyTypeHash},
			},
			ProvisionedThroughput: &types.ProvisionedThroughput{
				ReadCapacityUnits:  aws.Int64(5),
				WriteCapacityUnits: aws.Int64(5),
			},
		}
	case roomTableName:
		createTableInput = &dynamodb.CreateTableInput{
			TableName: aws.String(tableName),
			AttributeDefinitions: []types.AttributeDefinition{
				{AttributeName: aws.String("room_id"), AttributeType: types.ScalarAttributeTypeS},
			},
			KeySchema: []types.KeySchemaElement{
				{AttributeName: aws.String("room_id"), KeyType: types.KeyTypeHash},
			},
			ProvisionedThroughput: &types.ProvisionedThroughput{
				ReadCapacityUnits:  aws.Int64(5),
				WriteCapacityUnits: aws.Int64(5),
			},
		}
	default:
		return fmt.Errorf("unknown table name: %s", tableName)
	}

	_, err := d.db.CreateTable(context.TODO(), createTableInput)
	if err != nil {
		return fmt.Errorf("failed to create table %s: %v", tableName, err)
	}

	return nil
}

// 条件付きPutで既存キーへの上書きを防ぐ。条件エラーは登録済みということなので無視する
func (d *DynamoDB) EnsureUser(userID string) error {
	if userID == "" {
		return nil
	}
	input := &dynamodb.PutItemInput{
		TableName: aws.String(userTableName),
		Item: map[string]types.AttributeValue{
			"user_id":      &types.AttributeValueMemberS{Value: userID},
			"display_name": &types.AttributeValueMemberS{Value: ""},
		},
		ConditionExpression: aws.String("attribute_not_exists(user_id)"),
	}

	_, err := d.db.PutItem(context.TODO(), input)
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return nil
	}
	return err
}

func (d *DynamoDB) EnsureRoom(roomID string) error {
	if roomID == "" {
		return nil
	}
	input := &dynamodb.PutItemInput{
		TableName: aws.String(roomTableName),
		Item: map[string]types.AttributeValue{
			"room_id":   &types.AttributeValueMemberS{Value: roomID},
			"room_name": &types.AttributeValueMemberS{Value: ""},
		},
		ConditionExpression: aws.String("attribute_not_exists(room_id)"),
	}

	_, err := d.db.PutItem(context.TODO(), input)
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return nil
	}
	return err
}

func (d *DynamoDB) SavePost(post *model.Post) error {
	hasPoll := "0"
	if post.HasPoll {
		hasPoll = "1"
	}
	input := &dynamodb.PutItemInput{
		TableName: aws.String(postTableName),
		Item: map[string]types.AttributeValue{
			"post_id":      &types.AttributeValueMemberS{Value: post.PostID},
			"timestamp":    &types.AttributeValueMemberS{Value: post.Timestamp.Format(time.RFC3339)},
			"user_id":      &types.AttributeValueMemberS{Value: post.UserID},
			"room_id":      &types.AttributeValueMemberS{Value: post.RoomID},
			"message_text": &types.AttributeValueMemberS{Value: post.MessageText},
			"has_poll":     &types.AttributeValueMemberN{Value: hasPoll},
		},
		ConditionExpression: aws.String("attribute_not_exists(post_id)"),
	}

	_, err := d.db.PutItem(context.TODO(), input)
	// 再配信で同じpostIdが届いても初回の記録を保持する
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return nil
	}
	return err
}

func (d *DynamoDB) SaveAnswer(answer *model.Answer) error {
	if answer.AnswerID == "" {
		answer.AnswerID = uuid.New().String()
	}
	input := &dynamodb.PutItemInput{
		TableName: aws.String(answerTableName),
		Item: map[string]types.AttributeValue{
			"answer_id":    &types.AttributeValueMemberS{Value: answer.AnswerID},
			"timestamp":    &types.AttributeValueMemberS{Value: answer.Timestamp.Format(time.RFC3339)},
			"poll_post_id": &types.AttributeValueMemberS{Value: answer.PollPostID},
			"user_id":      &types.AttributeValueMemberS{Value: answer.UserID},
			"answer_value": &types.AttributeValueMemberS{Value: answer.AnswerValue},
		},
	}

	_, err := d.db.PutItem(context.TODO(), input)
	return err
}

func (d *DynamoDB) GetPost(postID string) (*model.Post, error) {
	input := &dynamodb.GetItemInput{
		TableName: aws.String(postTableName),
		Key: map[string]types.AttributeValue{
			"post_id": &types.AttributeValueMemberS{Value: postID},
		},
	}

	result, err := d.db.GetItem(context.TODO(), input)
	if err != nil {
		return nil, err
	}
	if result.Item == nil {
		return nil, nil
	}

	timestampStr := getStringValue(result.Item, "timestamp")
	timestamp, err := time.Parse(time.RFC3339, timestampStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse timestamp (%s): %v", timestampStr, err)
	}

	hasPoll, err := getNumberValue(result.Item, "has_poll")
	if err != nil {
		return nil, fmt.Errorf("failed to parse has_poll: %v", err)
	}

	post := model.Post{
		PostID:      getStringValue(result.Item, "post_id"),
		Timestamp:   timestamp,
		UserID:      getStringValue(result.Item, "user_id"),
		RoomID:      getStringValue(result.Item, "room_id"),
		MessageText: getStringValue(result.Item, "message_text"),
		HasPoll:     hasPoll == 1,
	}

	return &post, nil
}

func (d *DynamoDB) GetUser(userID string) (*model.User, error) {
	input := &dynamodb.GetItemInput{
		TableName: aws.String(userTableName),
		Key: map[string]types.AttributeValue{
			"user_id": &types.AttributeValueMemberS{Value: userID},
		},
	}

	result, err := d.db.GetItem(context.TODO(), input)
	if err != nil {
		return nil, err
	}
	if result.Item == nil {
		return nil, nil
	}

	user := model.User{
		UserID:      getStringValue(result.Item, "user_id"),
		DisplayName: getStringValue(result.Item, "display_name"),
	}

	return &user, nil
}

func (d *DynamoDB) GetRoom(roomID string) (*model.Room, error) {
	input := &dynamodb.GetItemInput{
		TableName: aws.String(roomTableName),
		Key: map[string]types.AttributeValue{
			"room_id": &types.AttributeValueMemberS{Value: roomID},
		},
	}

	result, err := d.db.GetItem(context.TODO(), input)
	if err != nil {
		return nil, err
	}
	if result.Item == nil {
		return nil, nil
	}

	room := model.Room{
		RoomID:   getStringValue(result.Item, "room_id"),
		RoomName: getStringValue(result.Item, "room_name"),
	}

	return &room, nil
}

func (d *DynamoDB) GetPollResult(postID string) (*model.PollResult, error) {
	var result model.PollResult

	input := &dynamodb.QueryInput{
		TableName:              aws.String(answerTableName),
		IndexName:              aws.String(pollPostIDIndexName),
		KeyConditionExpression: aws.String("poll_post_id = :poll_post_id"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":poll_post_id": &types.AttributeValueMemberS{Value: postID},
		},
	}

	for {
		out, err := d.db.Query(context.TODO(), input)
		if err != nil {
			// テーブルが未作成なら回答ゼロとして扱う
			var rnf *types.ResourceNotFoundException
			if errors.As(err, &rnf) {
				return &model.PollResult{}, nil
			}
			return nil, err
		}

		for _, item := range out.Items {
			switch getStringValue(item, "answer_value") {
			case model.AnswerOK:
				result.OK++
			case model.AnswerNG:
				result.NG++
			}
		}

		if out.LastEvaluatedKey == nil {
			break
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}

	return &result, nil
}

func getStringValue(item map[string]types.AttributeValue, key string) string {
	if v, ok := item[key].(*types.AttributeValueMemberS); ok {
		return v.Value
	}
	return ""
}

func getNumberValue(item map[string]types.AttributeValue, key string) (int, error) {
	if v, ok := item[key].(*types.AttributeValueMemberN); ok {
		return strconv.Atoi(v.Value)
	}
	return 0, fmt.Errorf("failed to parse %s", key)
}
